package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/xiaot623/chatbot/internal/transport/http/api"
	"github.com/xiaot623/chatbot/internal/transport/ws"
)

type chatOptions struct {
	server       string
	sessionID    string
	title        string
	systemPrompt string
	userID       string
}

var chatOpts chatOptions

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running server over websocket",
	Long: `Open an interactive chat against a running server.

A new session is created unless --session is given. Each line typed is
sent as a user message and the assistant reply is printed.

Commands: /quit to exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), chatOpts)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatOpts.server, "server", "http://localhost:8000", "Base URL of the chat server")
	chatCmd.Flags().StringVar(&chatOpts.sessionID, "session", "", "Existing session id to join")
	chatCmd.Flags().StringVar(&chatOpts.title, "title", "", "Title for a new session")
	chatCmd.Flags().StringVar(&chatOpts.systemPrompt, "system-prompt", "", "System prompt for a new session")
	chatCmd.Flags().StringVar(&chatOpts.userID, "user", "", "User id for a new session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, opts chatOptions) error {
	sessionID := opts.sessionID
	if sessionID == "" {
		created, err := createSession(ctx, opts.server, api.CreateSessionRequest{
			Title:        opts.title,
			SystemPrompt: opts.systemPrompt,
			UserID:       opts.userID,
		})
		if err != nil {
			return err
		}
		sessionID = created.ID
	}

	addr, err := websocketURL(opts.server, sessionID)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var ready ws.SessionReadyMessage
	if err := conn.ReadJSON(&ready); err != nil {
		return fmt.Errorf("read session_ready: %w", err)
	}
	if ready.Type != ws.TypeSessionReady {
		return fmt.Errorf("expected %s, got: %s", ws.TypeSessionReady, ready.Type)
	}

	fmt.Fprintln(out, successStyle.Render("Connected to session "+ready.SessionID))
	fmt.Fprintln(out, infoStyle.Render("Title: "+ready.Title))
	fmt.Fprintln(out, "Type a message and press Enter to send. /quit to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" {
			fmt.Fprintln(out, "Bye!")
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}

		if err := sendTurn(conn, out, input); err != nil {
			return err
		}
	}
}

// sendTurn sends one user message and prints incoming frames until the
// reply to it arrives.
func sendTurn(conn *websocket.Conn, out io.Writer, content string) error {
	requestID := uuid.New().String()
	msg := ws.UserMessage{
		BaseMessage: ws.BaseMessage{
			Type:      ws.TypeUserMessage,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
		},
		Content: &content,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write user_message: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var base ws.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}

		switch base.Type {
		case ws.TypeAssistantMessage:
			var reply ws.ChatMessage
			if err := json.Unmarshal(data, &reply); err != nil {
				return fmt.Errorf("unmarshal assistant_message: %w", err)
			}
			fmt.Fprintln(out, infoStyle.Render("assistant: ")+reply.Message.Content)
			if base.RequestID == requestID {
				return nil
			}
		case ws.TypeUserEcho:
			if base.RequestID != requestID {
				var echo ws.ChatMessage
				if err := json.Unmarshal(data, &echo); err == nil {
					fmt.Fprintln(out, warningStyle.Render("user (other): ")+echo.Message.Content)
				}
			}
		case ws.TypeError:
			var errMsg ws.ErrorMessage
			if err := json.Unmarshal(data, &errMsg); err != nil {
				return fmt.Errorf("unmarshal error message: %w", err)
			}
			fmt.Fprintln(out, errorStyle.Render("error: ")+errMsg.Code+" - "+errMsg.Message)
			if base.RequestID == requestID {
				return nil
			}
		}
	}
}

func createSession(ctx context.Context, server string, req api.CreateSessionRequest) (*api.CreateSessionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(server, "/")+"/chat/session", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create session returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var created api.CreateSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &created, nil
}

func websocketURL(server, sessionID string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/chat/" + url.PathEscape(sessionID) + "/ws"
	return u.String(), nil
}
