package server

import (
	"soltip/internal/middleware"
	"soltip/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the body for POST /api/posts.
type CreatePostRequest struct {
	Wallet  string `json:"wallet"`
	Content string `json:"content"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, invalidBody())
	}

	// Stash the author wallet so downstream logging and rate limiting can
	// key on it.
	c.Locals("wallet", req.Wallet)

	post, err := s.postService.CreatePost(c.UserContext(), req.Wallet, req.Content)
	if err != nil {
		return fail(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "post created",
		"post_id", post.ID,
		"wallet", post.Wallet,
	)

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts (the global feed, newest first). The body
// is a bare array, the shape the client consumes directly; the continuation
// cursor, when there is one, travels in the X-Next-Cursor header.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit := parseLimit(c)
	cursor := c.Query("cursor")

	posts, next, err := s.postService.Feed(c.UserContext(), limit, cursor)
	if err != nil {
		return fail(c, err)
	}

	if next != "" {
		c.Set("X-Next-Cursor", next)
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/user/:wallet/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	wallet := c.Params("wallet")

	posts, err := s.postService.PostsByWallet(c.UserContext(), wallet, parseLimit(c))
	if err != nil {
		return fail(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return c.JSON(posts)
}
