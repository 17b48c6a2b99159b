package runtime

// message is a control message for the reaper.
type message interface {
	isMessage()
}

// newWork hands an in-flight rebuild to the reaper.
type newWork struct {
	work *PendingWork
}

// drain tells the reaper to exit once everything before it is joined.
type drain struct{}

func (newWork) isMessage() {}
func (drain) isMessage()   {}

// mailbox is an unbounded FIFO channel. Sends never wait on the receiver:
// a pump goroutine buffers messages until they are received.
type mailbox struct {
	in  chan message
	out chan message
}

func newMailbox() *mailbox {
	m := &mailbox{
		in:  make(chan message),
		out: make(chan message),
	}
	go m.pump()
	return m
}

func (m *mailbox) send(msg message) {
	m.in <- msg
}

// close stops intake. Messages already sent are still delivered, then out is closed.
func (m *mailbox) close() {
	close(m.in)
}

func (m *mailbox) receive() <-chan message {
	return m.out
}

func (m *mailbox) pump() {
	defer close(m.out)

	var queue []message
	in := m.in
	for in != nil || len(queue) > 0 {
		var out chan message
		var next message
		if len(queue) > 0 {
			out = m.out
			next = queue[0]
		}

		select {
		case msg, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, msg)
		case out <- next:
			queue[0] = nil
			queue = queue[1:]
		}
	}
}
