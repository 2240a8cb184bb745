package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pricepulse/internal/store"
	"pricepulse/pkg/errors"
)

type trackRequest struct {
	URL string `json:"url"`
}

type alertRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	ProductID   string `json:"product_id"`
	TargetPrice int64  `json:"target_price"`
}

// trackProduct starts tracking a product URL. The page is scraped
// synchronously so the caller gets the resolved product back; the first
// comparison run happens in the background.
func (s *Server) trackProduct(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url is required",
		})
	}

	// Reject an already tracked URL before spending a scrape on it
	if _, err := s.store.ProductByURL(c.Context(), req.URL); err == nil {
		return s.fail(c, errors.NewConflict("product already being tracked: "+req.URL))
	}

	info, err := s.extractor.Extract(c.Context(), req.URL)
	if err != nil {
		return s.fail(c, err)
	}

	product := &store.TrackedProduct{
		Platform:     info.Platform.String(),
		URL:          req.URL,
		Name:         info.Name,
		ImageURL:     info.ImageURL,
		Brand:        info.Brand,
		Model:        info.Model,
		CurrentPrice: info.Price,
	}
	if err := s.store.CreateProduct(c.Context(), product); err != nil {
		return s.fail(c, err)
	}

	s.sched.ScheduleProduct(product.ProductID)

	// First comparison fills the cross-platform view without waiting a
	// full interval
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.cmp.UpdateComparison(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("product_id", id).Msg("Initial comparison failed")
		}
	}(product.ProductID)

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	products, err := s.store.Products(c.Context(), limit, offset)
	if err != nil {
		return s.fail(c, err)
	}
	if products == nil {
		products = []store.TrackedProduct{}
	}
	return c.JSON(products)
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	product, err := s.store.Product(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(product)
}

func (s *Server) deleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.DeleteProduct(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	s.sched.RemoveProduct(id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) getHistory(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.store.Product(c.Context(), id); err != nil {
		return s.fail(c, err)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	points, err := s.store.History(c.Context(), id, limit)
	if err != nil {
		return s.fail(c, err)
	}
	if points == nil {
		points = []store.PricePoint{}
	}
	return c.JSON(points)
}

func (s *Server) getComparison(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.store.Product(c.Context(), id); err != nil {
		return s.fail(c, err)
	}

	results, err := s.store.Comparisons(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if results == nil {
		results = []store.ComparisonResult{}
	}
	return c.JSON(results)
}

func (s *Server) getProductAlerts(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.store.Product(c.Context(), id); err != nil {
		return s.fail(c, err)
	}

	alerts, err := s.store.AlertsForProduct(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if alerts == nil {
		alerts = []store.PriceAlert{}
	}
	return c.JSON(alerts)
}

func (s *Server) createAlert(c *fiber.Ctx) error {
	var req alertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Email == "" || req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email and product_id are required",
		})
	}
	if req.TargetPrice <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "target_price must be positive",
		})
	}

	if _, err := s.store.Product(c.Context(), req.ProductID); err != nil {
		return s.fail(c, err)
	}

	user, err := s.store.EnsureUser(c.Context(), req.Email, req.Name)
	if err != nil {
		return s.fail(c, err)
	}

	alert := &store.PriceAlert{
		UserID:      user.UserID,
		ProductID:   req.ProductID,
		TargetPrice: req.TargetPrice,
		Active:      true,
	}
	if err := s.store.CreateAlert(c.Context(), alert); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(alert)
}

func (s *Server) getAlert(c *fiber.Ctx) error {
	alert, err := s.store.Alert(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(alert)
}

func (s *Server) deleteAlert(c *fiber.Ctx) error {
	if err := s.store.DeleteAlert(c.Context(), c.Params("id")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// triggerUpdate fires a product's price job outside its schedule
func (s *Server) triggerUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.store.Product(c.Context(), id); err != nil {
		return s.fail(c, err)
	}

	if err := s.sched.TriggerPriceUpdate(id); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "triggered", "product_id": id})
}

func (s *Server) schedulerHealth(c *fiber.Ctx) error {
	return c.JSON(s.sched.Status())
}
