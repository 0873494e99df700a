// Command mailring is the in-process bootstrap loader named in spec §1:
// it reads a JSON list of {address, port} entries, spawns one node per
// entry, and chains them into a ring directly via SetSuccessor rather
// than a full Join handshake.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/sirupsen/logrus"

	"chordmail/internal/node"
)

type entity struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type bootstrapFile struct {
	Entities []entity `json:"entities"`
}

func main() {
	path := "cfg.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to read bootstrap file")
	}

	var cfg bootstrapFile
	if err := json.Unmarshal(raw, &cfg); err != nil {
		logrus.WithError(err).Fatal("failed to parse bootstrap file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nodes := make([]*node.Node, 0, len(cfg.Entities))
	for _, e := range cfg.Entities {
		n := node.New(e.Address, e.Port)
		if err := n.Start(ctx); err != nil {
			logrus.WithError(err).Fatalf("failed to start node %s:%d", e.Address, e.Port)
		}
		nodes = append(nodes, n)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Self().ID < nodes[j].Self().ID })

	for i, n := range nodes {
		successor := nodes[(i+1)%len(nodes)]
		if err := n.SetSuccessor(ctx, successor.Self()); err != nil {
			logrus.WithError(err).Warnf("failed to chain node %d", n.Self().ID)
		}
	}

	fmt.Println("ring membership:")
	for _, n := range nodes {
		fmt.Printf("  node %d at %s (%d mailboxes)\n", n.Self().ID, n.Addr(), n.MailboxCount())
	}

	<-ctx.Done()
	for _, n := range nodes {
		if err := n.Stop(); err != nil {
			logrus.WithError(err).Warnf("node %d stop returned an error", n.Self().ID)
		}
	}
}
