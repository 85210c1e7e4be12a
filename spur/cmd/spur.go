// Command-line chat client for a running spur server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/AasheeshLikePanner/spur/spur/types"
	"github.com/AasheeshLikePanner/spur/spur/utils/color"
	httputils "github.com/AasheeshLikePanner/spur/spur/utils/http"
)

func main() {
	apiURL := flag.String("api", envOr("SPUR_API_URL", "http://localhost:8000"), "base URL of the spur server")
	user := flag.String("user", "", "user handle to chat as")
	flag.Parse()

	if strings.TrimSpace(*user) == "" {
		fmt.Println(color.ColorError("missing -user: pick any handle, e.g. -user alice"))
		os.Exit(1)
	}

	client := &http.Client{Timeout: 150 * time.Second}
	base := strings.TrimRight(*apiURL, "/")

	fmt.Println(color.ColorInfo("Connected to " + base + " as " + *user))
	fmt.Println(color.ColorInfo("Commands: /sessions, /history, /memories, /new, exit"))
	fmt.Println()

	var sessionID string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.ColorPrompt("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "exit", "quit":
			fmt.Println(color.ColorInfo("Bye!"))
			return
		case "/new":
			sessionID = ""
			fmt.Println(color.ColorInfo("Started a fresh conversation."))
			continue
		case "/sessions":
			showSessions(client, base, *user)
			continue
		case "/history":
			showHistory(client, base, sessionID)
			continue
		case "/memories":
			showMemories(client, base, *user)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Second)
		var resp types.ChatResponse
		err := httputils.PostJSON(ctx, client, base+"/api/chat", nil, types.ChatRequest{
			Message:   line,
			SessionID: sessionID,
			UserID:    *user,
		}, &resp)
		cancel()
		if err != nil {
			fmt.Println(color.ColorError("send failed: " + err.Error()))
			continue
		}
		sessionID = resp.SessionID.String()
		fmt.Println(color.ColorAgentResponse(resp.Reply))
		fmt.Println()
	}
}

func showSessions(client *http.Client, base, user string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var sessions []types.SessionSummary
	err := httputils.GetJSON(ctx, client, base+"/api/chat/sessions?userId="+url.QueryEscape(user), nil, &sessions)
	if err != nil {
		fmt.Println(color.ColorError("sessions failed: " + err.Error()))
		return
	}
	if len(sessions) == 0 {
		fmt.Println(color.ColorWarning("no conversations yet"))
		return
	}
	for _, s := range sessions {
		fmt.Printf("%s  %s  %s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), color.ColorInfo(s.Name))
	}
}

func showHistory(client *http.Client, base, sessionID string) {
	if sessionID == "" {
		fmt.Println(color.ColorWarning("no active conversation; send a message first"))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var history []types.HistoryMessage
	err := httputils.GetJSON(ctx, client, base+"/api/chat/history?sessionId="+url.QueryEscape(sessionID), nil, &history)
	if err != nil {
		fmt.Println(color.ColorError("history failed: " + err.Error()))
		return
	}
	for _, m := range history {
		label := color.ColorPrompt("you")
		if m.Sender == "ai" {
			label = color.ColorAgentResponse("spur")
		}
		fmt.Printf("%s: %s\n", label, m.Content)
	}
}

func showMemories(client *http.Client, base, user string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var memories []types.MemoryItem
	err := httputils.GetJSON(ctx, client, base+"/api/chat/memories?userId="+url.QueryEscape(user), nil, &memories)
	if err != nil {
		fmt.Println(color.ColorError("memories failed: " + err.Error()))
		return
	}
	if len(memories) == 0 {
		fmt.Println(color.ColorWarning("nothing remembered yet"))
		return
	}
	for _, m := range memories {
		fmt.Println("- " + m.Content)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
