package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"inventory-service/internal/docstore"
	"inventory-service/internal/identity"
	"inventory-service/internal/models"
	"inventory-service/internal/service"
	"inventory-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Response messages
const (
	msgGeneric        = "Something went wrong. Try again!"
	msgItemMissing    = "Missing required fields. Please provide itemCode, itemName, category, price, availableStock, and totalSold."
	msgItemExists     = "An item with this itemCode already exists in the inventory!"
	msgItemAdded      = "Item added to inventory successfully!"
	msgItemUpdated    = "Item updated successfully!"
	msgItemDeleted    = "Item deleted successfully!"
	msgOrderMissing   = "Missing required fields. Please provide orderId, orderName, itemCode, quantity, date, time, address, and totalAmount."
	msgOrderAdded     = "Order added successfully!"
	msgOrderFailed    = "Failed to add the order. Please try again."
	msgLoginOK        = "Login successful!"
	msgRegisterOK     = "Registration successful!"
	msgUserNotFound   = "User not found!"
	msgBadCredentials = "Invalid credentials!"
	msgEmailInUse     = "Email is already in use!"
	msgWeakPassword   = "Password is too weak!"
	msgInvalidEmail   = "Invalid email address!"

	bannerText = "InventTrack backend running..."
)

// ReadinessCheck reports whether a dependency is reachable
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	inventoryService *service.InventoryService
	orderService     *service.OrderService
	authService      *service.AuthService
	readiness        []ReadinessCheck
	logger           *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	inventoryService *service.InventoryService,
	orderService *service.OrderService,
	authService *service.AuthService,
	readiness ...ReadinessCheck,
) *Handler {
	return &Handler{
		inventoryService: inventoryService,
		orderService:     orderService,
		authService:      authService,
		readiness:        readiness,
		logger:           util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(DefaultCORSOptions()))
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/", h.banner)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/inventory", h.listInventory)
		api.POST("/add-item", h.addItem)
		api.POST("/delete-item", h.deleteItem)
		api.POST("/login", h.login)
		api.POST("/register", h.register)
		api.POST("/process-order", h.processOrder)
		api.GET("/orders", h.listOrders)
	}
}

func (h *Handler) banner(c *gin.Context) {
	c.String(http.StatusOK, bannerText)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true
	for _, rc := range h.readiness {
		if err := rc.Check(ctx); err != nil {
			ready = false
			h.logger.Warn("Readiness check failed", zap.String("check", rc.Name), zap.Error(err))
			checks[rc.Name] = "unavailable"
			continue
		}
		checks[rc.Name] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listInventory(c *gin.Context) {
	inventory, err := h.inventoryService.ListInventory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"inventory": []docstore.Document{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"inventory": inventory,
	})
}

type itemData struct {
	ItemCode       string   `json:"itemCode" binding:"required"`
	ItemName       string   `json:"itemName" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	Price          *float64 `json:"price" binding:"required"`
	AvailableStock *int     `json:"availableStock" binding:"required,min=0"`
	TotalSold      *int     `json:"totalSold" binding:"required,min=0"`
}

type addItemRequest struct {
	ItemData *itemData `json:"itemData" binding:"required"`
	Update   bool      `json:"update"`
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": msgItemMissing,
		})
		return
	}

	item := models.InventoryItem{
		ItemCode:       req.ItemData.ItemCode,
		ItemName:       req.ItemData.ItemName,
		Category:       req.ItemData.Category,
		Price:          *req.ItemData.Price,
		AvailableStock: *req.ItemData.AvailableStock,
		TotalSold:      *req.ItemData.TotalSold,
	}

	err := h.inventoryService.AddItem(c.Request.Context(), item, req.Update)
	switch {
	case errors.Is(err, service.ErrItemExists):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": msgItemExists,
		})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": msgGeneric,
		})
		return
	}

	message := msgItemAdded
	if req.Update {
		message = msgItemUpdated
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

type deleteItemRequest struct {
	ItemCode string `json:"itemCode"`
}

func (h *Handler) deleteItem(c *gin.Context) {
	var req deleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": msgGeneric,
		})
		return
	}

	success := h.inventoryService.DeleteItem(c.Request.Context(), req.ItemCode)
	message := msgItemDeleted
	if !success {
		message = msgGeneric
	}
	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"message": message,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": msgGeneric,
		})
		return
	}

	principal, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		code, message := loginFailure(err)
		c.JSON(code, gin.H{
			"success": false,
			"message": message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msgLoginOK,
		"data":    principal,
	})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": msgGeneric,
		})
		return
	}

	principal, err := h.authService.Register(c.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		code, message := registerFailure(err)
		c.JSON(code, gin.H{
			"success": false,
			"message": message,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": msgRegisterOK,
		"data":    principal,
	})
}

func loginFailure(err error) (int, string) {
	switch identity.CodeOf(err) {
	case identity.CodeUserNotFound:
		return http.StatusUnauthorized, msgUserNotFound
	case identity.CodeInvalidCredential:
		return http.StatusUnauthorized, msgBadCredentials
	}
	return http.StatusInternalServerError, msgGeneric
}

func registerFailure(err error) (int, string) {
	switch identity.CodeOf(err) {
	case identity.CodeEmailAlreadyInUse:
		return http.StatusConflict, msgEmailInUse
	case identity.CodeWeakPassword:
		return http.StatusBadRequest, msgWeakPassword
	case identity.CodeInvalidEmail:
		return http.StatusBadRequest, msgInvalidEmail
	}
	return http.StatusInternalServerError, msgGeneric
}

type orderData struct {
	OrderID     string   `json:"orderId" binding:"required"`
	OrderName   string   `json:"orderName" binding:"required"`
	ItemCode    string   `json:"itemCode" binding:"required"`
	Quantity    int      `json:"quantity" binding:"required,gt=0"`
	Date        string   `json:"date" binding:"required"`
	Time        string   `json:"time" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	TotalAmount *float64 `json:"totalAmount" binding:"required"`
}

type processOrderRequest struct {
	OrderData *orderData `json:"orderData" binding:"required"`
}

func (h *Handler) processOrder(c *gin.Context) {
	var req processOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": msgOrderMissing,
		})
		return
	}

	order := models.Order{
		OrderID:     req.OrderData.OrderID,
		OrderName:   req.OrderData.OrderName,
		ItemCode:    req.OrderData.ItemCode,
		Quantity:    req.OrderData.Quantity,
		Date:        req.OrderData.Date,
		Time:        req.OrderData.Time,
		Address:     req.OrderData.Address,
		TotalAmount: *req.OrderData.TotalAmount,
	}

	if err := h.orderService.ProcessOrder(c.Request.Context(), order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": msgOrderFailed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msgOrderAdded,
	})
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"orders":  []docstore.Document{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
	})
}
