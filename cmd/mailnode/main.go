// Command mailnode runs a single chord ring node, for manual testing and
// observability — matching the teacher's own main.go, which takes its
// configuration from os.Args rather than prompting interactively.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"chordmail/internal/chordid"
	"chordmail/internal/node"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: mailnode <address> <port> [entry-address] [entry-port]")
		os.Exit(1)
	}

	address := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid port:", err)
		os.Exit(1)
	}

	n := node.New(address, port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := n.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to start node")
	}

	if len(os.Args) >= 5 {
		entryPort, err := strconv.Atoi(os.Args[4])
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid entry port:", err)
			os.Exit(1)
		}
		entry := chordid.NewNodeInfo(os.Args[3], entryPort)
		if err := n.Join(ctx, entry); err != nil {
			logrus.WithError(err).Fatal("failed to join ring")
		}
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := n.Stop(); err != nil {
				logrus.WithError(err).Warn("node stop returned an error")
			}
			return
		case <-ticker.C:
			fmt.Printf("node %d: %d mailboxes\n", n.Self().ID, n.MailboxCount())
		}
	}
}
