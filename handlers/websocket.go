package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"stashbin/models"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
)

type EventType string

const (
	EventTypeUpload EventType = "upload" // file uploaded through the API
	EventTypeIngest EventType = "ingest" // file picked up from the watch folder
)

// Event is pushed to all connected clients of the file's owner
type Event struct {
	Type EventType `json:"type"`
	File FileInfo  `json:"file"`
}

// SendSocketFunc returns true if data was successfully sent
type SendSocketFunc func([]byte) bool
type ConnectedClient struct {
	// Serializes writes to the connection - gorilla/websocket does not
	// support concurrent writers
	writeMutex sync.Mutex
	fun        SendSocketFunc
}

// ConnectedClients is needed as a user may be connected more than once
type ConnectedClients []*ConnectedClient

var (
	ConnectedUsers = cmap.New[ConnectedClients]()

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

func userSocketID(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

func addClient(id string, c *ConnectedClient) {
	ConnectedUsers.Upsert(id, ConnectedClients{c}, func(exist bool, valueInMap, newValue ConnectedClients) ConnectedClients {
		if exist {
			return append(valueInMap, c)
		}
		return newValue
	})
}

func removeClient(id string, c *ConnectedClient) {
	ConnectedUsers.Upsert(id, ConnectedClients{}, func(exist bool, valueInMap, newValue ConnectedClients) ConnectedClients {
		if !exist {
			return newValue
		}
		for _, oc := range valueInMap {
			if oc == c {
				continue
			}
			newValue = append(newValue, oc)
		}
		return newValue
	})
}

// NotifyUser pushes the event to all of the user's connected clients
func NotifyUser(userID uint64, event Event) {
	clients, ok := ConnectedUsers.Get(userSocketID(userID))
	if !ok {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	for _, client := range clients {
		client.fun(data)
	}
}

// WebSocket keeps a connection open and pushes upload/ingest events
// for the authenticated user
func WebSocket(c *gin.Context, user *models.User) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer conn.Close()

	// Setup client
	isConnected := true
	id := userSocketID(user.ID)
	client := ConnectedClient{}
	client.fun = func(data []byte) bool {
		client.writeMutex.Lock()
		defer client.writeMutex.Unlock()
		if !isConnected {
			return false
		}
		err := conn.WriteMessage(websocket.TextMessage, data)
		if err != nil {
			log.Println("write err:", err)
			isConnected = false
			return false
		}
		return true
	}
	addClient(id, &client)
	defer removeClient(id, &client)
	// Main read cycle
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			isConnected = false
			break
		}
		if string(message) == "ping" {
			client.fun([]byte("pong"))
		}
	}
}
