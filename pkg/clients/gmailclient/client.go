package gmailclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/pibshift/pibshift/internal/config"
)

// Client sends the schedule through the Gmail API as the configured user
type Client struct {
	service *gmail.Service
	ctx     context.Context
	userID  string
	sender  string

	sendMutex    sync.Mutex
	lastSendTime time.Time
}

// NewClient creates a Gmail client on top of an authorized HTTP client.
// The token behind it must carry the gmail.send scope.
func NewClient(ctx context.Context, httpClient *http.Client, share config.ShareConfig) (*Client, error) {
	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Client{
		service: service,
		ctx:     ctx,
		userID:  share.GmailUserID,
		sender:  share.GmailSender,
	}, nil
}
