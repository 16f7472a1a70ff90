package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var (
	// 升级器 - 将HTTP连接升级为WebSocket连接
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// 生产环境应该验证origin
			return true
		},
	}

	// 客户端连接管理
	clients      = make(map[string]*Client) // userID -> Client
	clientsMutex sync.RWMutex

	// 通知分发队列
	notifyQueue = make(chan *Notification, 1000)

	// Redis订阅
	redisPubSub *redis.PubSub
	redisCtx    = context.Background()
)

// Client WebSocket客户端
type Client struct {
	ID         string             // 用户ID
	Connection *websocket.Conn    // WebSocket连接
	Send       chan *Notification // 发送消息队列
}

// Notification 推送给客户端的通知
// Type: listing_status, booking, exchange, payment, ping, pong
type Notification struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id,omitempty"` // 目标用户，空表示广播
	BikeID    string      `json:"bike_id,omitempty"`
	Status    string      `json:"status,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// InitNotifyHub 初始化通知服务
func InitNotifyHub() error {
	// 启动分发worker
	go startNotifyWorker()

	// 启动Redis PubSub监听（多服务器场景）
	if config.RedisClient != nil {
		go subscribeToRedis()
	}

	// 启动心跳检测
	go heartbeatChecker()

	log.Println("✅ Notification service initialized")
	return nil
}

// HandleConnection 处理WebSocket连接
// 握手通过query的token鉴权（浏览器WebSocket无法带Authorization头）。
func HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := config.GetJWTService().ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	userID := claims.UserID

	// 升级HTTP连接为WebSocket连接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	// 创建客户端
	client := &Client{
		ID:         userID,
		Connection: conn,
		Send:       make(chan *Notification, 256),
	}

	// 同一用户重连时替换旧连接
	clientsMutex.Lock()
	if old, exists := clients[userID]; exists {
		old.Connection.Close()
	}
	clients[userID] = client
	clientsMutex.Unlock()

	// 设置用户在线状态到Redis
	if config.RedisClient != nil {
		go func() {
			config.RedisClient.Set(redisCtx, "online:"+userID, "1", time.Minute*5)
			config.RedisClient.SAdd(redisCtx, "online:users", userID)
		}()
	}

	log.Printf("User %s connected via WebSocket", userID)

	// 启动读写goroutine
	go client.readPump()
	go client.writePump()
}

// readPump 从WebSocket连接读取消息
// 通知通道是单向的，客户端只会发ping。
func (c *Client) readPump() {
	defer func() {
		c.Connection.Close()
		removeClient(c.ID)
	}()

	c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Connection.SetPongHandler(func(string) error {
		c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for user %s: %v", c.ID, err)
			}
			break
		}

		var n Notification
		if err := json.Unmarshal(message, &n); err != nil {
			continue
		}

		if n.Type == "ping" {
			select {
			case c.Send <- &Notification{Type: "pong", Timestamp: time.Now().Unix()}:
			default:
			}
		}
	}
}

// writePump 向WebSocket连接写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Connection.Close()
	}()

	for {
		select {
		case n, ok := <-c.Send:
			if !ok {
				c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Connection.WriteJSON(n); err != nil {
				log.Printf("WebSocket write error for user %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			// 发送心跳
			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NotifyUser 向指定用户推送通知
func NotifyUser(userID string, n *Notification) {
	n.UserID = userID
	if n.Timestamp == 0 {
		n.Timestamp = time.Now().Unix()
	}

	select {
	case notifyQueue <- n:
	default:
		log.Printf("Notify queue is full, dropping notification for user %s", userID)
	}

	// 同时发布到Redis（多服务器同步）
	if config.RedisClient != nil {
		go func() {
			data, _ := json.Marshal(n)
			config.RedisClient.Publish(redisCtx, "notify:broadcast", data)
		}()
	}
}

// NotifyStatusChange 向卖家推送车辆状态变更
func NotifyStatusChange(sellerID, bikeID, status, message string) {
	NotifyUser(sellerID, &Notification{
		Type:    "listing_status",
		BikeID:  bikeID,
		Status:  status,
		Message: message,
	})
}

// startNotifyWorker 启动通知分发worker
func startNotifyWorker() {
	for n := range notifyQueue {
		if n.UserID == "" {
			broadcastToAll(n)
			continue
		}

		clientsMutex.RLock()
		client, exists := clients[n.UserID]
		clientsMutex.RUnlock()
		if !exists {
			continue
		}

		select {
		case client.Send <- n:
		default:
			// 发送队列满了，断开连接
			log.Printf("Client %s send queue is full, closing connection", n.UserID)
			client.Connection.Close()
		}
	}
}

// broadcastToAll 向所有在线用户推送
func broadcastToAll(n *Notification) {
	clientsMutex.RLock()
	defer clientsMutex.RUnlock()

	var wg sync.WaitGroup
	for _, client := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			select {
			case c.Send <- n:
			default:
			}
		}(client)
	}
	wg.Wait()
}

// subscribeToRedis 订阅Redis频道（多服务器同步）
func subscribeToRedis() {
	pubsub := config.RedisClient.Subscribe(redisCtx, "notify:broadcast")
	redisPubSub = pubsub

	ch := pubsub.Channel()
	for msg := range ch {
		var n Notification
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			continue
		}

		select {
		case notifyQueue <- &n:
		default:
		}
	}
}

// heartbeatChecker 心跳检测
func heartbeatChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		clientsMutex.Lock()
		for userID, client := range clients {
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				// 连接已断开，清理客户端
				log.Printf("Removing dead client: %s", userID)
				delete(clients, userID)

				if config.RedisClient != nil {
					config.RedisClient.Del(redisCtx, "online:"+userID)
					config.RedisClient.SRem(redisCtx, "online:users", userID)
				}
			}
		}
		clientsMutex.Unlock()
	}
}

// removeClient 移除断开的客户端
func removeClient(userID string) {
	clientsMutex.Lock()
	delete(clients, userID)
	clientsMutex.Unlock()

	if config.RedisClient != nil {
		config.RedisClient.Del(redisCtx, "online:"+userID)
		config.RedisClient.SRem(redisCtx, "online:users", userID)
	}
}

// GetOnlineUsers 获取在线用户列表
func GetOnlineUsers() ([]string, error) {
	if config.RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}

	return config.RedisClient.SMembers(redisCtx, "online:users").Result()
}

// GetOnlineUserCount 获取在线用户数
func GetOnlineUserCount() (int64, error) {
	if config.RedisClient == nil {
		return 0, fmt.Errorf("redis not available")
	}

	return config.RedisClient.SCard(redisCtx, "online:users").Result()
}

// CloseNotifyHub 关闭通知服务
func CloseNotifyHub() {
	if redisPubSub != nil {
		redisPubSub.Close()
	}

	clientsMutex.Lock()
	for _, client := range clients {
		client.Connection.Close()
	}
	clientsMutex.Unlock()
}
