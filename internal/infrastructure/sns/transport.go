package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
	"github.com/go-listing-notify/internal/config"
	"github.com/go-listing-notify/internal/domain"
	"golang.org/x/sync/errgroup"
)

// api is the subset of *sns.Client used by Transport.
type api interface {
	CreatePlatformEndpoint(ctx context.Context, in *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Transport delivers pushes through SNS mobile push. SNS has no multicast call,
// so every token is published to its own platform endpoint, with bounded concurrency.
type Transport struct {
	client      api
	androidARN  string
	iosARN      string
	concurrency int
}

func NewTransport(ctx context.Context, cfg config.Push) (*Transport, error) {
	if cfg.SNSAndroidAppARN == "" && cfg.SNSIOSAppARN == "" {
		return nil, errors.New("no SNS platform application configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
	if err != nil {
		return nil, err
	}
	return newTransport(sns.NewFromConfig(awsCfg), cfg), nil
}

func newTransport(client api, cfg config.Push) *Transport {
	c := cfg.SNSConcurrency
	if c < 1 {
		c = 1
	}
	return &Transport{client: client, androidARN: cfg.SNSAndroidAppARN, iosARN: cfg.SNSIOSAppARN, concurrency: c}
}

func (t *Transport) Send(ctx context.Context, msg domain.PushMessage) ([]domain.TokenResult, error) {
	body, err := buildMessage(msg.PushContent)
	if err != nil {
		return nil, fmt.Errorf("build sns message: %w", err)
	}

	results := make([]domain.TokenResult, len(msg.Targets))
	var g errgroup.Group
	g.SetLimit(t.concurrency)
	for i, tg := range msg.Targets {
		g.Go(func() error {
			results[i] = t.publish(ctx, tg, body)
			return nil
		})
	}
	_ = g.Wait()

	if err := batchFailure(results); err != nil {
		return nil, err
	}
	return results, nil
}

func (t *Transport) publish(ctx context.Context, tg domain.PushTarget, body string) domain.TokenResult {
	res := domain.TokenResult{Token: tg.Token}
	appARN := t.appARN(tg.Platform)
	if appARN == "" {
		res.Err = tokenError{fmt.Errorf("no platform application for %q", tg.Platform)}
		return res
	}
	ep, err := t.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(appARN),
		Token:                  aws.String(tg.Token),
	})
	if err != nil {
		res.Err = classify(err)
		return res
	}
	out, err := t.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        ep.EndpointArn,
		Message:          aws.String(body),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		res.Err = classify(err)
		var disabled *types.EndpointDisabledException
		res.Unregistered = errors.As(err, &disabled)
		return res
	}
	res.Success = true
	res.MessageID = aws.ToString(out.MessageId)
	return res
}

func (t *Transport) appARN(platform string) string {
	if platform == domain.PlatformIOS {
		return t.iosARN
	}
	return t.androidARN
}

// tokenError marks a failure caused by one token rather than the transport.
type tokenError struct{ error }

func (e tokenError) Unwrap() error { return e.error }

func classify(err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "EndpointDisabled", "InvalidParameter", "PlatformApplicationDisabled":
			return tokenError{err}
		}
	}
	return err
}

// batchFailure returns an error when every token failed for a transport-level
// reason, e.g. bad credentials or no network.
func batchFailure(results []domain.TokenResult) error {
	if len(results) == 0 {
		return nil
	}
	for _, r := range results {
		if r.Success {
			return nil
		}
		var te tokenError
		if errors.As(r.Err, &te) {
			return nil
		}
	}
	return results[0].Err
}

type gcmPayload struct {
	Notification gcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type gcmNotification struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Sound     string `json:"sound,omitempty"`
	ChannelID string `json:"android_channel_id,omitempty"`
}

type apnsPayload struct {
	Aps  aps               `json:"aps"`
	Data map[string]string `json:"data,omitempty"`
}

type aps struct {
	Alert apsAlert `json:"alert"`
	Sound string   `json:"sound,omitempty"`
	Badge *int     `json:"badge,omitempty"`
}

type apsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// buildMessage renders the per-platform JSON envelope SNS expects with
// MessageStructure=json. Each platform's hints only affect its own key.
func buildMessage(c domain.PushContent) (string, error) {
	gcm := gcmPayload{Notification: gcmNotification{Title: c.Title, Body: c.Body}, Data: c.Data}
	if a := c.Hints.Android; a != nil {
		gcm.Notification.Sound = a.Sound
		gcm.Notification.ChannelID = a.ChannelID
	}
	apns := apnsPayload{Aps: aps{Alert: apsAlert{Title: c.Title, Body: c.Body}}, Data: c.Data}
	if i := c.Hints.IOS; i != nil {
		apns.Aps.Sound = i.Sound
		apns.Aps.Badge = i.Badge
	}

	gcmJSON, err := json.Marshal(gcm)
	if err != nil {
		return "", err
	}
	apnsJSON, err := json.Marshal(apns)
	if err != nil {
		return "", err
	}
	envelope := map[string]string{
		"default":      c.Body,
		"GCM":          string(gcmJSON),
		"APNS":         string(apnsJSON),
		"APNS_SANDBOX": string(apnsJSON),
	}
	b, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
