// Command placeorder fills the storefront order form from flags and submits it
// to a running server. Network failures are retried with the same request id,
// so a retried order is recorded at most once.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"

	"watchbox/config"
	"watchbox/domain/order"
	"watchbox/infrastructure/persistence/retry"
	"watchbox/pkg/logger"
	"watchbox/pkg/orderform"
)

type options struct {
	baseURL  string
	lang     string
	name     string
	phone    string
	wilaya   string
	baladiya string
	model    string
	delivery string
	notes    string
	attempts int
	timeout  time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.baseURL, "url", "http://localhost:8080", "Storefront base URL")
	flag.StringVar(&opts.lang, "lang", "ar", "Message language (ar, en)")
	flag.StringVar(&opts.name, "name", "", "Buyer full name")
	flag.StringVar(&opts.phone, "phone", "", "Buyer phone")
	flag.StringVar(&opts.wilaya, "wilaya", "", "Wilaya")
	flag.StringVar(&opts.baladiya, "baladiya", "", "Baladiya")
	flag.StringVar(&opts.model, "model", "", "Watch model id, e.g. model-3")
	flag.StringVar(&opts.delivery, "delivery", "home", "Delivery option (home, desk)")
	flag.StringVar(&opts.notes, "notes", "", "Optional notes")
	flag.IntVar(&opts.attempts, "attempts", 3, "Submission attempts on network errors")
	flag.DurationVar(&opts.timeout, "timeout", time.Minute, "Overall timeout")
	flag.Parse()

	if err := logger.Init(&config.LogConfig{Level: "warn", Format: "console"}, "development"); err != nil {
		fmt.Fprintf(os.Stderr, "placeorder: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "placeorder: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	msgs := order.MessagesFor(opts.lang)
	form := orderform.New(
		orderform.NewClient(opts.baseURL, orderform.WithLanguage(opts.lang)),
		orderform.WithMessages(msgs),
		orderform.WithResetDelay(0),
	)
	form.SelectProduct(opts.model)
	form.SetFullName(opts.name)
	form.SetPhone(opts.phone)
	form.SetWilaya(opts.wilaya)
	form.SetBaladiya(opts.baladiya)
	form.SelectDelivery(order.DeliveryOption(opts.delivery))
	form.SetNotes(opts.notes)

	fmt.Printf("total: %d %s\n", form.Total().Amount(), form.Total().Currency())

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	cfg := retry.DefaultConfig
	cfg.MaxAttempts = opts.attempts
	cfg.InitialDelay = 500 * time.Millisecond
	cfg.MaxDelay = 5 * time.Second
	cfg.RetryOnDeadlock = false
	cfg.RetryOnLockWait = false
	cfg.RetryPredicate = isNetworkError

	var reply *orderform.Reply
	err := retry.ExecuteWithRetry(ctx, cfg, func(ctx context.Context) error {
		var err error
		reply, err = form.Submit(ctx)
		if err != nil && isNetworkError(err) {
			logger.Warn("Submission failed, retrying with the same request id",
				zap.String("client_request_id", form.Token()),
				zap.Error(err))
		}
		return err
	})

	var fe *order.FieldError
	switch {
	case errors.As(err, &fe):
		return fmt.Errorf("%s: %s", fe.Field(), msgs.FieldMessage(fe.Field()))
	case err != nil:
		return fmt.Errorf("%s (%w)", msgs.Connectivity, err)
	case !reply.Success:
		return errors.New(form.Notice())
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(reply)
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
