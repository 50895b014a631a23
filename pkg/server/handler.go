package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikeboe/web-researcher/pkg/chat"
	"github.com/mikeboe/web-researcher/pkg/research"
)

const mcpProtocolVersion = "2024-11-05"

// MCPSession represents an MCP session
type MCPSession struct {
	ID      string
	Created int64
}

// MCPRequest represents an MCP JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an MCP JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Handler struct {
	Service *Service
	Chat    *chat.Service // nil disables the chat routes
	Tools   *chat.ResearchToolset

	sessionMu   sync.RWMutex
	mcpSessions map[string]*MCPSession
}

func NewHandler(s *Service, c *chat.Service, tools *chat.ResearchToolset) *Handler {
	return &Handler{Service: s, Chat: c, Tools: tools, mcpSessions: make(map[string]*MCPSession)}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/mcp", h.MCPHandler)
	api := r.Group("/api")
	{
		api.POST("/research", h.runResearch)

		// Chat Routes
		api.POST("/chat/conversations", h.createConversation)
		api.GET("/chat/conversations", h.listConversations)
		api.GET("/chat/conversations/:id/messages", h.getMessages)
		api.POST("/chat/conversations/:id/messages", h.sendMessage)
	}
}

// MCPHandler handles MCP protocol requests
func (h *Handler) MCPHandler(c *gin.Context) {
	sessionID := c.GetHeader("Mcp-Session-Id")

	var req MCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, http.StatusBadRequest, nil, nil, &MCPError{Code: -32700, Message: "Parse error"})
		return
	}

	switch req.Method {
	case "initialize":
		c.Header("Mcp-Session-Id", h.openSession(sessionID))
		h.respond(c, http.StatusOK, req.ID, map[string]interface{}{
			"protocolVersion": mcpProtocolVersion,
			"serverInfo": map[string]interface{}{
				"name":    "web-researcher-mcp",
				"version": "1.0.0",
			},
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
		}, nil)
		return
	case "notifications/initialized":
		// Notifications carry no id and get no response body.
		c.Status(http.StatusAccepted)
		return
	}

	if sessionID == "" {
		h.respond(c, http.StatusBadRequest, req.ID, nil, &MCPError{Code: -32000, Message: "Bad Request: No valid session ID provided"})
		return
	}
	if !h.hasSession(sessionID) {
		h.respond(c, http.StatusBadRequest, req.ID, nil, &MCPError{Code: -32000, Message: "Invalid session ID"})
		return
	}

	switch req.Method {
	case "tools/list":
		h.respond(c, http.StatusOK, req.ID, map[string]interface{}{"tools": []interface{}{researchToolSchema}}, nil)
	case "tools/call":
		h.handleToolsCall(c, req)
	case "ping":
		h.respond(c, http.StatusOK, req.ID, map[string]interface{}{}, nil)
	default:
		h.sendError(c, req.ID, -32601, "Method not found")
	}
}

// openSession returns id, registering a new session when the client sent none.
func (h *Handler) openSession(id string) string {
	if id != "" {
		return id
	}
	id = uuid.NewString()
	h.sessionMu.Lock()
	h.mcpSessions[id] = &MCPSession{ID: id, Created: time.Now().Unix()}
	h.sessionMu.Unlock()
	return id
}

func (h *Handler) hasSession(id string) bool {
	h.sessionMu.RLock()
	defer h.sessionMu.RUnlock()
	_, ok := h.mcpSessions[id]
	return ok
}

var researchToolSchema = map[string]interface{}{
	"name":        "research",
	"description": "Research an objective on the web: generate queries, rank results, analyze the best pages and suggest next actions.",
	"inputSchema": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"research_query": map[string]interface{}{
				"type":        "string",
				"description": "The research objective.",
			},
			"initial_query": map[string]interface{}{
				"type":        "string",
				"description": "Optional first search query. Defaults to the objective.",
			},
		},
		"required": []string{"research_query"},
	},
}

func (h *Handler) handleToolsCall(c *gin.Context, req MCPRequest) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		h.sendError(c, req.ID, -32602, "Invalid params")
		return
	}

	if params.Name != "research" {
		h.sendError(c, req.ID, -32601, fmt.Sprintf("Tool not found: %s", params.Name))
		return
	}

	var args chat.RunResearchArgs
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		h.sendError(c, req.ID, -32602, "Invalid arguments")
		return
	}
	resp, err := h.Tools.RunResearch(c.Request.Context(), args)
	if err != nil {
		h.sendError(c, req.ID, -32603, err.Error())
		return
	}
	h.sendResult(c, req.ID, resp.Report)
}

// respond writes a JSON-RPC 2.0 envelope. Exactly one of result and mcpErr is set.
func (h *Handler) respond(c *gin.Context, status int, id interface{}, result interface{}, mcpErr *MCPError) {
	c.JSON(status, MCPResponse{JSONRPC: "2.0", ID: id, Result: result, Error: mcpErr})
}

// sendError reports a method-level failure; JSON-RPC errors still travel with 200.
func (h *Handler) sendError(c *gin.Context, id interface{}, code int, msg string) {
	h.respond(c, http.StatusOK, id, nil, &MCPError{Code: code, Message: msg})
}

func (h *Handler) sendResult(c *gin.Context, id interface{}, text string) {
	h.respond(c, http.StatusOK, id, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
	}, nil)
}

func (h *Handler) runResearch(c *gin.Context) {
	var req ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Service.Run(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, research.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// requireChat answers 503 when the chat agent is not configured.
func (h *Handler) requireChat(c *gin.Context) bool {
	if h.Chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat is not configured"})
		return false
	}
	return true
}

func (h *Handler) createConversation(c *gin.Context) {
	if !h.requireChat(c) {
		return
	}
	conv, err := h.Chat.CreateConversation(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (h *Handler) listConversations(c *gin.Context) {
	if !h.requireChat(c) {
		return
	}
	convs, err := h.Chat.ListConversations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (h *Handler) getMessages(c *gin.Context) {
	if !h.requireChat(c) {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	msgs, err := h.Chat.GetHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) sendMessage(c *gin.Context) {
	if !h.requireChat(c) {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := h.Chat.SendMessage(c.Request.Context(), id, req.Content)
	if err != nil {
		c.JSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for event, err := range next {
		if err != nil {
			// The stream has started, so the error goes out as an event.
			writeEvent(c, chat.StreamEvent{Type: "error", Payload: err.Error()})
			return
		}
		if !writeEvent(c, event) {
			return
		}
	}
}

func writeEvent(c *gin.Context, event chat.StreamEvent) bool {
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}
	_, _ = c.Writer.Write([]byte("data: "))
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
	return true
}

func chatErrorStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
