package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/configs"
	"workshop-dispatch/internal/delivery/kafka"
	"workshop-dispatch/internal/models"
)

// Publishes the dispatch request stored at JSON_STATIC_REQUEST_PATH (or the first argument)
// to the request topic. A request id is generated when the file has none.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env loaded: %s", err)
	}

	cfg, err := configs.LoadConfig()
	if err != nil {
		logrus.Fatalf("error loading config: %s", err)
	}
	logrus.Print("config loaded")

	path := cfg.JsonStaticRequestPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	f, err := os.Open(path)
	if err != nil {
		logrus.Fatalf("open json file: %s", err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		logrus.Fatalf("read json file: %s", err)
	}

	var req models.DispatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logrus.Fatalf("decode dispatch request: %s", err)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.StaffID == "" {
		req.StaffID = cfg.StaffID
	}
	payload, err := json.Marshal(req)
	if err != nil {
		logrus.Fatalf("encode dispatch request: %s", err)
	}

	pub, err := kafka.NewPublisher(cfg.KafkaBrokersSlice(), cfg.KafkaRequestTopic)
	if err != nil {
		logrus.Fatalf("kafka publisher: %s", err)
	}
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			logrus.Errorf("publisher close: %v", cerr)
		}
	}()

	if err := pub.Publish(context.Background(), []byte(req.RequestID), payload); err != nil {
		logrus.Fatalf("publish failed: %s", err)
	}
	logrus.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"children":   len(req.ChildIDs),
		"topic":      cfg.KafkaRequestTopic,
	}).Print("dispatch request published")
}
