// chatcli is a terminal rendering of the support-chat widget: it drives
// the client adapter from typed lines and prints replies inline.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/avoronov/n8n-chat-relay/pkg/client"
)

func main() {
	godotenv.Load()

	backend := flag.String("backend", "", "backend base URL (default: CHAT_BACKEND_URL)")
	user := flag.String("user", "", "identity to chat as (default: cached identity)")
	flag.Parse()

	var opts []client.Option
	if *user != "" {
		opts = append(opts, client.WithUserID(*user))
	}

	c, err := client.New(*backend, opts...)
	if err != nil {
		log.Fatalf("chatcli: %v", err)
	}

	fmt.Printf("chatting as %s — type a message, /history, or /quit\n", c.UserID())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		switch text {
		case "/quit":
			return
		case "/history":
			history, err := c.History(context.Background(), 50)
			if err != nil {
				fmt.Printf("! failed to load history: %v\n", err)
				continue
			}
			for _, m := range history {
				fmt.Printf("you: %s\nbot: %s\n", m.Message, m.Reply)
			}
		default:
			// Input is blocked until the send resolves; the loop is the
			// pending flag.
			result, err := c.Send(context.Background(), text)
			if err != nil {
				fmt.Println("! Error: failed to contact chatbot backend.")
				continue
			}
			fmt.Printf("bot: %s\n", result.Reply)
		}
	}
}
