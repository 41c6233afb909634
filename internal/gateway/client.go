// Package gateway talks to the chat gateway relay: outbound messages and
// reactions over HTTP, inbound message events over a websocket stream.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samkari/roadmap-service/types"
)

// Message limit on the platform is 2000 characters; split comfortably
// below it to leave room for formatting overhead.
const maxMessageLen = 1900

type Client struct {
	BaseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PostMessage sends plain text to a channel, splitting oversized content
// into ordered chunks. Returns the ID of the last message sent.
func (c *Client) PostMessage(channelID, content string) (string, error) {
	if len(content) <= maxMessageLen {
		return c.postSingle(channelID, content, nil, "")
	}

	var lastMessageID string
	for i, chunk := range splitChunks(content) {
		id, err := c.postSingle(channelID, chunk, nil, "")
		if err != nil {
			return "", fmt.Errorf("failed to send chunk %d: %w", i+1, err)
		}
		lastMessageID = id
		// Slight delay to ensure order
		time.Sleep(200 * time.Millisecond)
	}
	return lastMessageID, nil
}

// PostReply sends plain text as a reply to an existing message.
func (c *Client) PostReply(channelID, replyToID, content string) (string, error) {
	return c.postSingle(channelID, content, nil, replyToID)
}

// PostEmbed sends a structured card, optionally as a reply. Oversized
// leading content is chunked; the embed rides on the final chunk only.
func (c *Client) PostEmbed(channelID, replyToID, content string, embed *types.Embed) (string, error) {
	if len(content) <= maxMessageLen {
		return c.postSingle(channelID, content, embed, replyToID)
	}

	chunks := splitChunks(content)
	var lastMessageID string
	for i, chunk := range chunks {
		var currentEmbed *types.Embed
		if i == len(chunks)-1 {
			currentEmbed = embed
		}
		id, err := c.postSingle(channelID, chunk, currentEmbed, replyToID)
		if err != nil {
			return "", fmt.Errorf("failed to send chunk %d: %w", i+1, err)
		}
		lastMessageID = id
		time.Sleep(200 * time.Millisecond)
	}
	return lastMessageID, nil
}

// SendReply delivers a handler-produced reply.
func (c *Client) SendReply(reply *types.Reply) (string, error) {
	if reply.Embed != nil {
		return c.PostEmbed(reply.ChannelID, reply.ReplyToID, reply.Content, reply.Embed)
	}
	if reply.ReplyToID != "" {
		return c.PostReply(reply.ChannelID, reply.ReplyToID, reply.Content)
	}
	return c.PostMessage(reply.ChannelID, reply.Content)
}

// DeleteMessage removes a message from a channel.
func (c *Client) DeleteMessage(channelID, messageID string) error {
	return c.post("/message/delete", map[string]interface{}{
		"channel_id": channelID,
		"message_id": messageID,
	}, nil)
}

// AddReaction attaches an emoji reaction to a message.
func (c *Client) AddReaction(channelID, messageID, emoji string) error {
	return c.post("/reaction/add", map[string]interface{}{
		"channel_id": channelID,
		"message_id": messageID,
		"emoji":      emoji,
	}, nil)
}

// RemoveReaction removes the bot's emoji reaction from a message.
func (c *Client) RemoveReaction(channelID, messageID, emoji string) error {
	return c.post("/reaction/remove", map[string]interface{}{
		"channel_id": channelID,
		"message_id": messageID,
		"emoji":      emoji,
	}, nil)
}

func (c *Client) postSingle(channelID, content string, embed *types.Embed, replyToID string) (string, error) {
	reqBody := map[string]interface{}{
		"channel_id": channelID,
		"content":    content,
	}
	if embed != nil {
		reqBody["embed"] = embed
	}
	if replyToID != "" {
		reqBody["reply_to_id"] = replyToID
	}

	var result map[string]string
	if err := c.post("/post", reqBody, &result); err != nil {
		return "", err
	}
	return result["message_id"], nil
}

func (c *Client) post(path string, reqBody interface{}, out interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.BaseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway %s failed: status %d: %s", path, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}

// splitChunks breaks content into sendable pieces, splitting on line
// boundaries first to preserve formatting, falling back to rune slicing
// for a single oversized line.
func splitChunks(content string) []string {
	if len(content) <= maxMessageLen {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if len(line) > maxMessageLen {
			flush()
			runes := []rune(line)
			for i := 0; i < len(runes); i += maxMessageLen {
				end := i + maxMessageLen
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, string(runes[i:end]))
			}
			continue
		}
		if current.Len()+len(line)+1 > maxMessageLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}
