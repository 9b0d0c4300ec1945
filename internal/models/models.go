package models

// InventoryItem represents a stocked item, keyed by ItemCode
type InventoryItem struct {
	ItemCode       string  `json:"itemCode"`
	ItemName       string  `json:"itemName"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	AvailableStock int     `json:"availableStock"`
	TotalSold      int     `json:"totalSold"`
}

// Order represents a processed customer order
type Order struct {
	OrderID     string  `json:"orderId"`
	OrderName   string  `json:"orderName"`
	ItemCode    string  `json:"itemCode"`
	Quantity    int     `json:"quantity"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Address     string  `json:"address"`
	TotalAmount float64 `json:"totalAmount"`
}

// UserProfile is the part of a users document the data helpers read. The
// rest of the profile is passed through untouched.
type UserProfile struct {
	ID string `json:"id"`
}

// Chat is a two-party conversation
type Chat struct {
	ID           string   `json:"id"`
	Participants []string `json:"participants"`
	CreatedAt    string   `json:"createdAt"`
}

// Message belongs to a Chat by ChatID
type Message struct {
	MsgID    string `json:"msgId"`
	Text     string `json:"text"`
	Time     string `json:"time"`
	Seen     bool   `json:"seen"`
	SenderID string `json:"senderId"`
	ChatID   string `json:"chatId"`
}

// BlockList holds the users blocked by User
type BlockList struct {
	User         string   `json:"user"`
	BlockedUsers []string `json:"blockedUsers"`
}

// Favorites holds the users favorited by User
type Favorites struct {
	User          string   `json:"user"`
	FavoriteUsers []string `json:"favoriteUsers"`
}

// DeletedAccount marks a removed user
type DeletedAccount struct {
	User string `json:"user"`
}

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string `json:"eventId"`
	EventType   string `json:"eventType"`
	ProcessedAt string `json:"processedAt"`
}
