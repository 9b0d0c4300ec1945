package models

// Document store collections
const (
	CollectionInventory       = "inventory"
	CollectionOrders          = "orders"
	CollectionUsers           = "users"
	CollectionChats           = "chats"
	CollectionMessages        = "messages"
	CollectionFavorites       = "favorites"
	CollectionBlockLists      = "blockLists"
	CollectionDeletedAccounts = "deletedAccounts"
	CollectionProcessedEvents = "processedEvents"
)
