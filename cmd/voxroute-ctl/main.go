package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	cli "github.com/spf13/pflag"

	"voxroute/internal/ipc"
)

const usage = `usage: voxroute-ctl [flags] <command> [text...]

commands:
  say <text>   route text as an utterance of --session
  drop         forget the live conversation of --session
  sessions     list live sessions
`

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon control socket")
	sessionID := cli.StringP("session", "i", "ctl", "Session id")
	timeout := cli.DurationP("timeout", "t", 90*time.Second, "Reply timeout")
	cli.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		cli.PrintDefaults()
	}
	cli.Parse()

	if cli.NArg() == 0 {
		cli.Usage()
		os.Exit(2)
	}

	msg := ipc.ControlMessage{
		Cmd:     cli.Arg(0),
		Session: *sessionID,
		Text:    strings.Join(cli.Args()[1:], " "),
	}

	reply, err := ipc.SendCommand(*socket, msg, *timeout)
	if err != nil {
		fmt.Println("voxroute-daemon not running:", err)
		os.Exit(1)
	}

	if !reply.OK {
		fmt.Println("error:", reply.Error)
		os.Exit(1)
	}

	switch msg.Cmd {
	case ipc.CmdSay:
		fmt.Println("intent:  ", reply.Intent)
		if reply.Query != "" {
			fmt.Println("query:   ", reply.Query)
		}
		fmt.Println("response:", reply.Response)
	case ipc.CmdSessions:
		for _, id := range reply.Sessions {
			fmt.Println(id)
		}
	default:
		fmt.Println("ok")
	}
}
