//go:build linux

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

func newPoller() (poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{
		epfd:   fd,
		tokens: make(map[int]Token),
	}, nil
}

// epollPoller backs Reactor with Linux epoll. Registration is keyed by raw
// file descriptor; the Token <-> fd mapping lets Wait translate kernel
// events back into reactor Tokens.
type epollPoller struct {
	mu     sync.Mutex
	epfd   int
	tokens map[int]Token
}

func epollEvents(mode TriggerMode) uint32 {
	events := uint32(unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLRDHUP)
	if mode == EdgeTriggered {
		events |= unix.EPOLLET
	}
	return events
}

func (p *epollPoller) register(fd int, token Token, mode TriggerMode) error {
	p.mu.Lock()
	p.tokens[fd] = token
	p.mu.Unlock()

	ev := unix.EpollEvent{Events: epollEvents(mode), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		p.mu.Lock()
		delete(p.tokens, fd)
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *epollPoller) deregister(fd int) error {
	p.mu.Lock()
	delete(p.tokens, fd)
	p.mu.Unlock()

	// EpollCtl with a nil event is accepted by the kernel for EPOLL_CTL_DEL.
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) wait(timeoutMillis int, buf []Event) ([]Event, error) {
	raw := make([]unix.EpollEvent, EventBufferCapacity)

	n, err := unix.EpollWait(p.epfd, raw, timeoutMillis)
	if err != nil {
		if err == unix.EINTR {
			return buf, nil
		}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < n; i++ {
		fd := int(raw[i].Fd)
		token, ok := p.tokens[fd]
		if !ok {
			continue
		}

		var readiness Readiness
		if raw[i].Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
			readiness |= Readable
		}
		if raw[i].Events&unix.EPOLLOUT != 0 {
			readiness |= Writable
		}
		if raw[i].Events&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0 {
			readiness |= Hup
		}

		buf = append(buf, Event{Token: token, Readiness: readiness})
	}

	return buf, nil
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}
