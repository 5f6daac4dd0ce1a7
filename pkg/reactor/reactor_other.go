//go:build !linux

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// newPoller backs the Reactor on non-Linux unix platforms with a portable
// unix.Poll loop instead of epoll. Semantics match: level-triggered,
// readable | writable | hup interest, demultiplexed by Token.
func newPoller() (poller, error) {
	return &pollPoller{tokens: make(map[int]Token)}, nil
}

type pollPoller struct {
	mu     sync.Mutex
	tokens map[int]Token
	fds    []int
}

func (p *pollPoller) register(fd int, token Token, _ TriggerMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[fd] = token
	p.fds = append(p.fds, fd)
	return nil
}

func (p *pollPoller) deregister(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, fd)
	for i, f := range p.fds {
		if f == fd {
			p.fds = append(p.fds[:i], p.fds[i+1:]...)
			break
		}
	}
	return nil
}

func (p *pollPoller) wait(timeoutMillis int, buf []Event) ([]Event, error) {
	p.mu.Lock()
	fds := make([]unix.PollFd, len(p.fds))
	for i, fd := range p.fds {
		fds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN | unix.POLLOUT}
	}
	tokens := make(map[int]Token, len(p.tokens))
	for k, v := range p.tokens {
		tokens[k] = v
	}
	p.mu.Unlock()

	if len(fds) == 0 {
		if timeoutMillis > 0 {
			time.Sleep(time.Duration(timeoutMillis) * time.Millisecond)
		}
		return buf, nil
	}

	n, err := unix.Poll(fds, timeoutMillis)
	if err != nil {
		if err == unix.EINTR {
			return buf, nil
		}
		return nil, err
	}
	if n == 0 {
		return buf, nil
	}

	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		token, ok := tokens[int(pfd.Fd)]
		if !ok {
			continue
		}
		var readiness Readiness
		if pfd.Revents&unix.POLLIN != 0 {
			readiness |= Readable
		}
		if pfd.Revents&unix.POLLOUT != 0 {
			readiness |= Writable
		}
		if pfd.Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			readiness |= Hup
		}
		buf = append(buf, Event{Token: token, Readiness: readiness})
	}

	return buf, nil
}

func (p *pollPoller) close() error {
	return nil
}
