package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the subset of the SES v2 client used by SES.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES implements Mail using the Amazon SES v2 API.
type SES struct {
	client           SESAPI
	defaultFrom      string
	configurationSet string
}

// SESOptions configures SES client initialization.
type SESOptions struct {
	// Region is the AWS region.
	Region string
	// Endpoint overrides the AWS endpoint.
	Endpoint string
	// AccessKey is the static access key ID.
	AccessKey string
	// SecretKey is the static secret access key.
	SecretKey string
	// SessionToken is the optional session token.
	SessionToken string
	// From is the default sender when Message.From is empty.
	From string
	// ConfigurationSet is the optional SES configuration set name.
	ConfigurationSet string
}

// NewSES constructs an SES sender with the provided options.
func NewSES(ctx context.Context, opts SESOptions) (*SES, error) {
	cfgOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
	} else if opts.Endpoint != "" {
		cfgOpts = append(cfgOpts, config.WithRegion("us-east-1"))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		cfgOpts = append(cfgOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, err
	}
	client := sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewSESWithClient(client, opts), nil
}

// NewSESWithClient wraps an existing SES client. Only From and
// ConfigurationSet are read from opts.
func NewSESWithClient(client SESAPI, opts SESOptions) *SES {
	return &SES{
		client:           client,
		defaultFrom:      opts.From,
		configurationSet: opts.ConfigurationSet,
	}
}

// Send delivers a message through SES.
func (s *SES) Send(ctx context.Context, msg Message) error {
	env, err := msg.envelope(s.defaultFrom)
	if err != nil {
		return err
	}

	body := &types.Body{}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
	}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}
	}

	from := env.from.Address
	if env.from.Name != "" {
		from = env.from.String()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses:  addressList(env.to),
			CcAddresses:  addressList(env.cc),
			BccAddresses: addressList(env.bcc),
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
	if s.configurationSet != "" {
		input.ConfigurationSetName = aws.String(s.configurationSet)
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	return nil
}

// Close implements io.Closer for interface compatibility.
func (s *SES) Close() error {
	return nil
}
