// Package sheets appends accepted orders to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"watchbox/config"
	"watchbox/domain/order"
	"watchbox/domain/shared"
	"watchbox/pkg/logger"
)

const (
	entity      = "sheets"
	columns     = "A:M"
	timeLayout  = "2006-01-02T15:04:05.000Z07:00"
	parseFailed = "Unable to parse range"
)

// rowPattern picks the trailing row number out of ranges like "Sheet1!A7:M7".
var rowPattern = regexp.MustCompile(`[A-Z]+(\d+)$`)

// Appender implements order.RowAppender with spreadsheets.values.append.
type Appender struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
	messages      order.Messages
}

var _ order.RowAppender = (*Appender)(nil)

// New authenticates with the service account from cfg. Without a spreadsheet
// id or credentials the appender is still returned and every append fails
// with shared.ErrNotConfigured.
func New(ctx context.Context, cfg config.SheetsConfig, messages order.Messages, opts ...option.ClientOption) (*Appender, error) {
	a := &Appender{
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		messages:      messages,
	}
	if !cfg.SheetsConfigured() {
		logger.Warn("Spreadsheet not configured, orders will not be recorded")
		return a, nil
	}

	jwtConfig := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	clientOpts := []option.ClientOption{option.WithHTTPClient(jwtConfig.Client(context.Background()))}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	a.svc = svc
	return a, nil
}

// NewWithService wires a prebuilt service, for tests and custom transports.
func NewWithService(svc *gsheets.Service, spreadsheetID, sheetName string, messages order.Messages) *Appender {
	return &Appender{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		messages:      messages,
	}
}

// AppendOrder writes one row. When the named sheet cannot be resolved it
// retries once against the first sheet.
func (a *Appender) AppendOrder(ctx context.Context, o *order.Order) (int, error) {
	if a.svc == nil || a.spreadsheetID == "" {
		return 0, shared.NewNotConfiguredError(entity, "spreadsheet id or service account credentials missing")
	}

	row := Row(o, a.messages)
	rng := a.qualifiedRange()

	updated, err := a.append(ctx, rng, row)
	if err != nil && rng != columns && strings.Contains(err.Error(), parseFailed) {
		logger.Warn("Sheet range not found, retrying on default sheet",
			zap.String("range", rng),
			zap.Error(err),
		)
		updated, err = a.append(ctx, columns, row)
	}
	if err != nil {
		return 0, fmt.Errorf("append order row: %w", err)
	}
	return RowNumber(updated), nil
}

func (a *Appender) append(ctx context.Context, rng string, row []interface{}) (string, error) {
	resp, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, rng, &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

func (a *Appender) qualifiedRange() string {
	name := a.sheetName
	if name == "" {
		return columns
	}
	if strings.ContainsAny(name, " '!") {
		name = "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name + "!" + columns
}

// Row renders the thirteen spreadsheet columns A..M for an order.
func Row(o *order.Order, m order.Messages) []interface{} {
	return []interface{}{
		o.ReceivedAt().UTC().Format(timeLayout),
		o.RequestID(),
		o.FullName(),
		o.Phone(),
		o.Wilaya(),
		o.Baladiya(),
		o.Product().ID,
		m.DeliveryLabel(o.Delivery()),
		strconv.FormatInt(o.BoxPrice().Amount(), 10),
		strconv.FormatInt(o.DeliveryCost().Amount(), 10),
		strconv.FormatInt(o.Total().Amount(), 10),
		o.Notes(),
		m.StatusNew,
	}
}

// RowNumber parses the last row of an updated range; 0 when absent.
func RowNumber(updatedRange string) int {
	match := rowPattern.FindStringSubmatch(updatedRange)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}
