package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/castgo/castv2/pkg/config"
	"github.com/castgo/castv2/pkg/device"
	"github.com/castgo/castv2/pkg/reactor"
)

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive <ip> <uuid>",
		Short: "Open an interactive shell against a receiver",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			info, err := parseTarget(args[0], args[1])
			if err != nil {
				return err
			}

			d, r, err := dial(info, cfg)
			if err != nil {
				return err
			}
			defer r.Close()
			defer d.Close()

			shell := &interactiveShell{device: d, reactor: r, cfg: cfg}
			return shell.run()
		},
	}
}

// interactiveShell drives a readline-based REPL over a connected Device,
// draining queued session events between every prompt (mirroring the
// teacher's bufio-based interactive command loops in cmd/mash-device and
// cmd/mash-controller, adapted onto the reactor-driven host loop this
// client requires).
type interactiveShell struct {
	device  *device.Device
	reactor *reactor.Reactor
	cfg     config.Config
}

func (s *interactiveShell) run() error {
	rl, err := readline.New("castv2> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("castv2 interactive shell. Type 'help' for commands, 'quit' to exit.")

	for {
		// Drain whatever happened since the last prompt without blocking.
		if err := s.drainPending(); err != nil {
			return err
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, cmdArgs := fields[0], fields[1:]

		if err := s.dispatch(cmd, cmdArgs); err != nil {
			if err == errQuit {
				return nil
			}
			fmt.Println("error:", err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func (s *interactiveShell) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		s.printHelp()
	case "status":
		if err := s.device.UpdateStatus(); err != nil {
			return err
		}
		return s.waitAndPrintStatus()
	case "launch":
		if len(args) != 1 {
			return fmt.Errorf("usage: launch <app-id>")
		}
		if err := s.device.Launch(resolveAppID(args[0])); err != nil {
			return err
		}
		return s.waitAndPrintStatus()
	case "stop":
		if len(args) != 1 {
			return fmt.Errorf("usage: stop <session-id>")
		}
		return s.device.Stop(args[0])
	case "quit", "exit", "q":
		return errQuit
	default:
		fmt.Printf("unknown command: %s (type 'help')\n", cmd)
	}
	return nil
}

func (s *interactiveShell) waitAndPrintStatus() error {
	deadline := time.Now().Add(s.cfg.ConnectTimeout)
	err := pumpUntil(s.device, s.reactor, s.cfg, deadline, func() bool {
		for _, ev := range s.device.Events() {
			if ev.Tag == device.EventStatusUpdated {
				return true
			}
			if ev.Tag == device.EventLaunchFailed {
				fmt.Printf("launch failed: %s\n", ev.LaunchError.Reason)
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}
	printStatus(s.device)
	return nil
}

// drainPending handles any readiness events already pending without
// blocking the prompt.
func (s *interactiveShell) drainPending() error {
	events, err := s.reactor.Poll(0)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Token != s.device.Token() {
			continue
		}
		if err := s.device.HandleIO(ev); err != nil {
			return err
		}
	}
	s.device.Events() // discard; status output happens on explicit commands
	return nil
}

func (s *interactiveShell) printHelp() {
	fmt.Println(`
Commands:
  status             - request and print RECEIVER_STATUS
  launch <app-id>    - launch an application (name or raw app id)
  stop <session-id>  - stop a running application session
  help               - show this message
  quit               - exit the shell`)
}
