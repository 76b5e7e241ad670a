package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dealer/domain/entities"
)

// TonGatewayConfig configures the HTTP chain gateway client
type TonGatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// TonGatewayClient talks to a toncenter-compatible HTTP gateway. Reads go
// straight to the indexer API; transfers go through the signing sidecar
// mounted on the same base URL, which holds the wallet key.
type TonGatewayClient struct {
	cfg    TonGatewayConfig
	client *http.Client
}

// NewTonGatewayClient creates a new gateway client
func NewTonGatewayClient(cfg TonGatewayConfig) *TonGatewayClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TonGatewayClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type gatewayEnvelope struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

type gatewayTransaction struct {
	TransactionID struct {
		Hash string `json:"hash"`
	} `json:"transaction_id"`
	Utime int64 `json:"utime"`
	InMsg struct {
		Source  string `json:"source"`
		Value   string `json:"value"`
		Message string `json:"message"`
	} `json:"in_msg"`
}

// GetIncomingTransactions returns the most recent incoming transfers to
// address, newest first. Outgoing and bounced internal messages carry no
// source and are skipped.
func (c *TonGatewayClient) GetIncomingTransactions(ctx context.Context, address string, limit int) ([]entities.ChainTransaction, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("limit", strconv.Itoa(limit))

	raw, err := c.get(ctx, "/getTransactions", params)
	if err != nil {
		return nil, err
	}

	var gwTxs []gatewayTransaction
	if err := json.Unmarshal(raw, &gwTxs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions response: %w", err)
	}

	txs := make([]entities.ChainTransaction, 0, len(gwTxs))
	for _, gt := range gwTxs {
		if gt.InMsg.Source == "" {
			continue
		}
		amount, err := strconv.ParseInt(gt.InMsg.Value, 10, 64)
		if err != nil || amount <= 0 {
			continue
		}
		txs = append(txs, entities.ChainTransaction{
			Hash:        gt.TransactionID.Hash,
			AmountNano:  amount,
			FromAddress: gt.InMsg.Source,
			Timestamp:   time.Unix(gt.Utime, 0).UTC(),
			Memo:        gt.InMsg.Message,
		})
	}
	return txs, nil
}

type sendTransferRequest struct {
	ToAddress  string `json:"to_address"`
	AmountNano int64  `json:"amount_nano"`
	Comment    string `json:"comment"`
}

type sendTransferResult struct {
	Seqno  int64  `json:"seqno"`
	Wallet string `json:"wallet"`
}

// SendTransfer submits an outgoing transfer through the signing sidecar.
// The final on-chain hash is not known at submission time, so the receipt
// carries a synthetic reference built from the wallet seqno.
func (c *TonGatewayClient) SendTransfer(ctx context.Context, toAddress string, amountNano int64, note string) (*entities.TransferReceipt, error) {
	body, err := json.Marshal(sendTransferRequest{
		ToAddress:  toAddress,
		AmountNano: amountNano,
		Comment:    note,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer request: %w", err)
	}

	raw, err := c.post(ctx, "/sendTransfer", body)
	if err != nil {
		return nil, err
	}

	var result sendTransferResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode transfer response: %w", err)
	}

	return &entities.TransferReceipt{
		Reference: payoutReference(time.Now().UTC(), result.Seqno, result.Wallet),
	}, nil
}

// GetBalance returns the current balance of address in nanotons
func (c *TonGatewayClient) GetBalance(ctx context.Context, address string) (int64, error) {
	params := url.Values{}
	params.Set("address", address)

	raw, err := c.get(ctx, "/getAddressBalance", params)
	if err != nil {
		return 0, err
	}

	var balanceStr string
	if err := json.Unmarshal(raw, &balanceStr); err != nil {
		return 0, fmt.Errorf("failed to decode balance response: %w", err)
	}

	balance, err := strconv.ParseInt(balanceStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	return balance, nil
}

func (c *TonGatewayClient) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req)
}

func (c *TonGatewayClient) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *TonGatewayClient) do(req *http.Request) (json.RawMessage, error) {
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var envelope gatewayEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode gateway envelope: %w", err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("gateway error: %s", envelope.Error)
	}
	return envelope.Result, nil
}

// payoutReference builds the operator-facing reference for an outgoing
// transfer: timestamp, wallet seqno, and a wallet address suffix are enough
// to locate the transaction on an explorer.
func payoutReference(at time.Time, seqno int64, wallet string) string {
	suffix := wallet
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("payout_%d_%d_%s", at.Unix(), seqno, suffix)
}
