package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/models"
)

func humanizeValidationErrors(errs validator.ValidationErrors) string {
	var b strings.Builder
	for _, fe := range errs {
		if fe.Param() != "" {
			fmt.Fprintf(&b, "%s: %s=%s; ", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			fmt.Fprintf(&b, "%s: %s; ", fe.Namespace(), fe.Tag())
		}
	}
	s := b.String()
	if len(s) > 2 {
		s = s[:len(s)-2]
	}
	return s
}

// HandleMessage dispatches one request consumed from the queue. Decode and validation
// failures are permanent; the consumer routes them to the dead letter topic.
func (s *Service) HandleMessage(ctx context.Context, payload []byte) error {
	var req models.DispatchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	res, err := s.CreateGroup(ctx, req)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"request_id": res.RequestID,
		"group_id":   res.GroupID,
		"items":      res.Submitted,
	}).Info("dispatch request handled")
	return nil
}
