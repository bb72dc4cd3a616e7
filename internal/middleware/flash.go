package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie     = "flash"
	flashContextKey = "flash"
	flashMaxAge     = 60
)

// Flash categories understood by the templates
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// Flash is a one-shot notice shown on the next rendered page
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// FlashStore keeps notices in an HMAC-signed cookie across a redirect
type FlashStore struct {
	secret []byte
}

func NewFlashStore(secret string) *FlashStore {
	return &FlashStore{secret: []byte(secret)}
}

// Middleware moves a pending notice from the cookie into the request context
// and clears the cookie so it is shown only once.
func (s *FlashStore) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(flashCookie)
		if err == nil {
			if flash := s.decode(cookie); flash != nil {
				c.Set(flashContextKey, flash)
			}
			c.SetCookie(flashCookie, "", -1, "/", "", false, true)
		}

		c.Next()
	}
}

// Set stores a notice for the next request
func (s *FlashStore) Set(c *gin.Context, category, message string) error {
	data, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return err
	}

	encodedData := base64.URLEncoding.EncodeToString(data)
	c.SetCookie(flashCookie, s.sign(encodedData)+"."+encodedData, flashMaxAge, "/", "", false, true)
	return nil
}

// GetFlash retrieves the notice carried into this request, if any
func GetFlash(c *gin.Context) *Flash {
	value, exists := c.Get(flashContextKey)
	if !exists {
		return nil
	}

	if flash, ok := value.(*Flash); ok {
		return flash
	}

	return nil
}

func (s *FlashStore) decode(cookie string) *Flash {
	// Split cookie value (signature.data)
	signature, data, ok := strings.Cut(cookie, ".")
	if !ok {
		return nil
	}

	if !hmac.Equal([]byte(signature), []byte(s.sign(data))) {
		return nil
	}

	decodedData, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}

	var flash Flash
	if err := json.Unmarshal(decodedData, &flash); err != nil {
		return nil
	}

	return &flash
}

func (s *FlashStore) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}
