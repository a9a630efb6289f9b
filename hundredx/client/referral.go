package client

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hundredx/go100x/hundredx/types"
)

// alreadyReferredMarkers are the server messages for an existing referrer.
var alreadyReferredMarkers = []string{"already referred", "already has a referrer", "referee already exists"}

// AddReferralCode registers the signer as referee of code. An account that is
// already referred yields an error matching types.ErrAlreadyReferred, which
// callers may ignore; every other failure is returned as is.
func (c *Client) AddReferralCode(ctx context.Context, code string) (types.Ack, error) {
	msg, err := c.BuildReferralMessage(code, 0)
	if err != nil {
		return nil, err
	}
	var out types.Ack
	err = c.signAndSend(ctx, EndpointReferral, msg, nil, &out)
	if err != nil {
		if isAlreadyReferred(err) {
			return nil, errors.WithStack(&referralError{cause: err})
		}
		return nil, err
	}
	return out, nil
}

func isAlreadyReferred(err error) bool {
	var te *types.TransportError
	if !errors.As(err, &te) {
		return false
	}
	body := strings.ToLower(te.Body)
	for _, m := range alreadyReferredMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// referralError matches types.ErrAlreadyReferred and keeps the server reply.
type referralError struct {
	cause error
}

func (e *referralError) Error() string {
	return types.ErrAlreadyReferred.Error() + ": " + e.cause.Error()
}

func (e *referralError) Is(target error) bool { return target == types.ErrAlreadyReferred }

func (e *referralError) Unwrap() error { return e.cause }
