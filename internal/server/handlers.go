// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// WebSocketHandler handles WebSocket upgrade requests and hands new
// connections to the gateway. It validates that the request uses the GET
// method, upgrades the HTTP connection to WebSocket, creates a Client with a
// fresh connection id, and registers it; the gateway launches the pumps and
// sends the connection_response.
func (g *Gateway) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, g, r.RemoteAddr)
	select {
	case g.register <- client:
	case <-g.ctx.Done():
		// Gateway already shut down; refuse the session.
		_ = conn.Close()
	}
}

// StatusHandler reports that the chat server is up. Pass-through, no state
// dependency.
func StatusHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "Chat Server Running"})
}

// HealthHandler provides the health check endpoint, returning server status
// and the current timestamp.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

// TestPageHandler serves an HTML test page for exercising the chat protocol.
// It provides a simple web interface to connect, join a room, send messages
// and typing indicators, and request history.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Live Chat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] {
            padding: 5px;
            margin-right: 10px;
        }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .status {
            margin: 10px 0;
            padding: 5px;
            border-radius: 3px;
        }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
        #typing { color: gray; font-style: italic; min-height: 1em; }
    </style>
</head>
<body>
    <h1>Live Chat Test</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <input type="text" id="usernameInput" placeholder="Username" value="tester">
        <input type="text" id="roomInput" placeholder="Room" value="general">
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>

    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
        <button id="historyButton" onclick="requestHistory()" disabled>History</button>
    </div>

    <div id="typing"></div>
    <div id="messages"></div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const historyButton = document.getElementById('historyButton');
        const connectButton = document.getElementById('connectButton');
        const statusDiv = document.getElementById('status');
        const typingDiv = document.getElementById('typing');

        function addLine(text, color) {
            const el = document.createElement('div');
            el.style.margin = '5px 0';
            el.style.color = color || 'black';
            el.textContent = text;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function updateStatus(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
            historyButton.disabled = !connected;
            connectButton.textContent = connected ? 'Disconnect' : 'Connect';
        }

        function sendEvent(event, data) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({event: event, data: data}));
            }
        }

        function connect() {
            ws = new WebSocket('ws://' + location.host + '/ws');

            ws.onopen = function() {
                updateStatus(true);
                sendEvent('join', {
                    username: document.getElementById('usernameInput').value,
                    room: document.getElementById('roomInput').value
                });
            };

            ws.onmessage = function(e) {
                const frame = JSON.parse(e.data);
                const d = frame.data;
                switch (frame.event) {
                case 'connection_response':
                    addLine('Connected as ' + d.client_id, 'gray');
                    break;
                case 'message':
                    addLine(d.username + ': ' + d.message, d.type === 'system' ? 'gray' : 'black');
                    break;
                case 'user_joined':
                    addLine(d.username + ' joined (' + d.active_users + ' active)', 'green');
                    break;
                case 'user_typing':
                    typingDiv.textContent = d.is_typing ? d.username + ' is typing...' : '';
                    break;
                case 'message_history':
                    addLine('--- history (' + d.total + ' total) ---', 'gray');
                    d.messages.forEach(function(m) {
                        addLine('[' + m.timestamp + '] ' + m.username + ': ' + m.message, 'gray');
                    });
                    break;
                }
            };

            ws.onclose = function() {
                addLine('Connection closed', 'gray');
                updateStatus(false);
                ws = null;
            };
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.close();
            } else {
                connect();
            }
        }

        function sendMessage() {
            const message = messageInput.value.trim();
            if (message) {
                sendEvent('message', {message: message});
                messageInput.value = '';
                sendEvent('typing', {is_typing: false});
            }
        }

        function requestHistory() {
            sendEvent('get_messages', {room: document.getElementById('roomInput').value});
        }

        messageInput.addEventListener('input', function() {
            sendEvent('typing', {is_typing: messageInput.value.length > 0});
        });

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
