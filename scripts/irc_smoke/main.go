// Command irc_smoke is a tiny manual smoke test client: it registers against
// a running server, joins a channel, says one line and quits.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Printf("irc_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "localhost:6667", "server address")
	password := flag.String("password", "secret", "server password")
	nick := flag.String("nick", "smoketester", "nickname")
	channel := flag.String("channel", "#smoke", "channel to join")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(*timeout))

	br := bufio.NewReader(conn)
	send := func(line string) error {
		if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
			return fmt.Errorf("send %q: %w", line, err)
		}
		return nil
	}
	waitFor := func(verb string) error {
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return fmt.Errorf("waiting for %s: %w", verb, err)
			}
			line = strings.TrimRight(line, "\r\n")
			fmt.Println("<", line)
			if strings.Contains(line, verb) {
				return nil
			}
		}
	}

	if err := send("PASS " + *password); err != nil {
		return err
	}
	if err := send("NICK " + *nick); err != nil {
		return err
	}
	if err := send("USER " + *nick + " 0 * :" + *nick); err != nil {
		return err
	}
	if err := waitFor("001"); err != nil {
		return err
	}

	if err := send("JOIN " + *channel); err != nil {
		return err
	}
	if err := waitFor("JOIN"); err != nil {
		return err
	}
	if err := send("PRIVMSG " + *channel + " :" + *text); err != nil {
		return err
	}
	if err := send("PING smoke"); err != nil {
		return err
	}
	if err := waitFor("PONG"); err != nil {
		return err
	}

	if err := send("QUIT :smoke test done"); err != nil {
		return err
	}
	if err := waitFor("ERROR"); err != nil {
		return err
	}
	fmt.Println("smoke test passed")
	return nil
}
