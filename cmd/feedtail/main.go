// Package main provides a command line client that tails a live
// conversation feed over the WebSocket API. Useful for smoke testing the
// snapshot delivery path end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:8480", "API server host")
	email := flag.String("email", "", "Login email")
	password := flag.String("password", "password123", "Login password")
	peer := flag.String("peer", "", "User id of the conversation peer to tail")
	flag.Parse()

	if *email == "" || *peer == "" {
		log.Fatal("both -email and -peer are required")
	}

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Printf("Logged in as %s", *email)

	ticket, err := getTicket(*host, token)
	if err != nil {
		log.Fatalf("Ticket issuance failed: %v", err)
	}

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws/feed", RawQuery: "ticket=" + ticket}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	join, _ := json.Marshal(map[string]string{"type": "join", "user_id": *peer})
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		log.Fatalf("Join failed: %v", err)
	}
	log.Printf("Tailing conversation with %s (Ctrl-C to stop)", *peer)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Printf("Read error: %v", err)
				return
			}
			printSnapshot(message)
		}
	}()

	select {
	case <-interrupt:
		leave, _ := json.Marshal(map[string]string{"type": "leave", "user_id": *peer})
		_ = conn.WriteMessage(websocket.TextMessage, leave)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

func printSnapshot(raw []byte) {
	var ev struct {
		Type         string `json:"type"`
		Conversation string `json:"conversation"`
		Error        string `json:"error"`
		Messages     []struct {
			SenderID  string    `json:"sender_id"`
			Text      string    `json:"text"`
			ImageRef  string    `json:"image_ref"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Printf("Unparseable event: %s", raw)
		return
	}

	switch ev.Type {
	case "snapshot":
		log.Printf("--- snapshot [%s], %d messages ---", ev.Conversation, len(ev.Messages))
		for _, m := range ev.Messages {
			body := m.Text
			if body == "" && m.ImageRef != "" {
				body = "[image] " + m.ImageRef
			}
			log.Printf("%s  %s: %s", m.Timestamp.Format(time.RFC3339), m.SenderID[:8], body)
		}
	case "snapshot_dropped":
		log.Printf("!!! snapshot dropped, server is ahead of this client")
	case "error":
		log.Printf("server error: %s", ev.Error)
	default:
		log.Printf("event: %s", raw)
	}
}

func login(host, email, password string) (string, error) {
	loginURL := fmt.Sprintf("http://%s/api/auth/login", host)
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(loginURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Token, nil
}

func getTicket(host, token string) (string, error) {
	ticketURL := fmt.Sprintf("http://%s/api/ws/ticket", host)
	req, _ := http.NewRequest("POST", ticketURL, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Ticket, nil
}
