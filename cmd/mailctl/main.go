// Command mailctl is a minimal REPL over the client façade — the
// observability consumer named in spec §6; the full terminal/GUI mail
// reader remains out of scope per spec §1.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"chordmail/client"
	"chordmail/internal/chordid"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: mailctl <address> <port>")
		os.Exit(1)
	}
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid port:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := client.New(ctx, chordid.NewNodeInfo(os.Args[1], port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect failed:", err)
		os.Exit(1)
	}

	fmt.Println("connected. commands: register <owner> <psw> | login <owner> <psw> | send <to> <subject> <body> | list | delete <idx> | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "register":
			if len(fields) != 3 {
				fmt.Println("usage: register <owner> <psw>")
				continue
			}
			if err := c.AccountRegister(ctx, fields[1], fields[2]); err != nil {
				fmt.Println("error:", err)
			}
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <owner> <psw>")
				continue
			}
			if err := c.AccountLogin(ctx, fields[1], fields[2]); err != nil {
				fmt.Println("error:", err)
			}
		case "send":
			if len(fields) < 4 {
				fmt.Println("usage: send <to> <subject> <body...>")
				continue
			}
			if err := c.Send(ctx, fields[1], fields[2], strings.Join(fields[3:], " ")); err != nil {
				fmt.Println("error:", err)
			}
		case "list":
			if err := c.GetMessages(ctx); err != nil {
				fmt.Println("error:", err)
				continue
			}
			for i, m := range c.Inbox {
				fmt.Printf("[%d] from %s: %s\n", i, m.From, m.Subject)
			}
		case "delete":
			if len(fields) != 2 {
				fmt.Println("usage: delete <idx>")
				continue
			}
			idx, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("invalid index:", err)
				continue
			}
			if err := c.Remove(ctx, idx); err != nil {
				fmt.Println("error:", err)
			}
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}
