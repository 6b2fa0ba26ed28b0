package telephony

import (
	"net/http"

	"phonecase/pkg/logger"

	"github.com/gin-gonic/gin"
	twilioclient "github.com/twilio/twilio-go/client"
)

const signatureHeader = "X-Twilio-Signature"

// SignatureValidator checks an X-Twilio-Signature against the full request URL and POST params.
type SignatureValidator interface {
	Validate(url string, params map[string]string, expectedSignature string) bool
}

func NewSignatureValidator(authToken string) SignatureValidator {
	v := twilioclient.NewRequestValidator(authToken)
	return &v
}

// RequireTwilioSignature rejects provider webhooks whose signature does not match.
// baseURL is the public URL Twilio was configured with; the request path is appended to it.
func RequireTwilioSignature(v SignatureValidator, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromGin(c)

		if err := c.Request.ParseForm(); err != nil {
			log.Warn("twilio webhook parse failed", "err", err)
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		params := make(map[string]string, len(c.Request.PostForm))
		for k, vals := range c.Request.PostForm {
			if len(vals) > 0 {
				params[k] = vals[0]
			}
		}

		url := baseURL + c.Request.URL.RequestURI()
		if !v.Validate(url, params, c.GetHeader(signatureHeader)) {
			log.Warn("twilio signature rejected", "url", url)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
