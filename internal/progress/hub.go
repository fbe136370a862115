package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type room struct {
	jobID   string
	clients map[string]*Client // clientID -> client
}

// Hub fans job progress out to every client watching that job. The most
// recent progress and status message of each job is kept so a client that
// joins late starts from the current state. Once a job is finished its
// state is kept for the retention period passed to NewHub.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*room
	progress   map[string]*Message
	status     map[string]*Message
	retain     time.Duration
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(retain time.Duration) *Hub {
	return &Hub{
		rooms:      make(map[string]*room),
		progress:   make(map[string]*Message),
		status:     make(map[string]*Message),
		retain:     retain,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register adds client to its job's room. It reports false once the hub
// has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	r, ok := h.rooms[client.JobID]
	if !ok {
		r = &room{jobID: client.JobID, clients: make(map[string]*Client)}
		h.rooms[client.JobID] = r
	}
	r.clients[client.ClientID] = client
	status := h.status[client.JobID]
	prog := h.progress[client.JobID]
	h.mu.Unlock()

	client.Send(&Message{Type: TypeWelcome, JobID: client.JobID, ClientID: client.ClientID})
	if status != nil {
		client.Send(status)
	}
	if prog != nil {
		client.Send(prog)
	}

	slog.Debug("progress client joined", "job", client.JobID, "client", client.ClientID, "user", client.UserID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[client.JobID]
	if !ok {
		return
	}
	if _, ok := r.clients[client.ClientID]; !ok {
		return
	}

	delete(r.clients, client.ClientID)
	close(client.send)
	if len(r.clients) == 0 {
		delete(h.rooms, client.JobID)
	}

	slog.Debug("progress client left", "job", client.JobID, "client", client.ClientID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, r := range h.rooms {
		for _, c := range r.clients {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}

// Publish records msg as the latest state of its job and broadcasts it.
func (h *Hub) Publish(msg *Message) {
	h.mu.Lock()
	switch msg.Type {
	case TypeProgress:
		h.progress[msg.JobID] = msg
	case TypeStatus:
		h.status[msg.JobID] = msg
	}
	h.mu.Unlock()

	h.broadcastToRoom(msg.JobID, msg, "")
}

func (h *Hub) Progress(jobID string, frame, total int) {
	h.Publish(ProgressMessage(jobID, frame, total))
}

func (h *Hub) Status(jobID, status, errMsg string) {
	h.Publish(StatusMessage(jobID, status, errMsg))
}

// Finished schedules the retained state of a job to be dropped.
func (h *Hub) Finished(jobID string) {
	if h.retain <= 0 {
		h.Forget(jobID)
		return
	}
	time.AfterFunc(h.retain, func() { h.Forget(jobID) })
}

// Forget drops the retained state of a job.
func (h *Hub) Forget(jobID string) {
	h.mu.Lock()
	delete(h.progress, jobID)
	delete(h.status, jobID)
	h.mu.Unlock()
}

// Watchers reports how many clients follow jobID.
func (h *Hub) Watchers(jobID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[jobID]; ok {
		return len(r.clients)
	}
	return 0
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePing:
		sender.Send(&Message{Type: TypePong, JobID: sender.JobID})
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.Send(&Message{Type: TypeError, JobID: sender.JobID, Error: "unknown message type"})
	}
}

// broadcastToRoom sends under the read lock: removeClient closes send
// channels under the write lock, so a client is never sent to after close.
func (h *Hub) broadcastToRoom(jobID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[jobID]
	if !ok {
		return
	}
	for _, c := range r.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
