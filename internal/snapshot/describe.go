package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/orgvault/orgvault/internal/common"
)

// DescribeFunc produces a one-line human-readable summary of a payload
// without decoding it into its native type. Listings call it per row, so
// it must stay cheap: each implementation decodes only the fields it needs.
type DescribeFunc func(payload []byte) (string, error)

func decodePartial(payload []byte, dst any) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorMalformedPayload, err)
	}
	return nil
}

// money renders an amount in minor units as "12.34 CUR".
func money(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}

func describeNote(payload []byte) (string, error) {
	var v struct {
		Title string `json:"title"`
	}
	if err := decodePartial(payload, &v); err != nil {
		return "", err
	}
	if v.Title == "" {
		return "(untitled note)", nil
	}
	return v.Title, nil
}

func describeTask(payload []byte) (string, error) {
	var v struct {
		Title string `json:"title"`
		Done  bool   `json:"done"`
	}
	if err := decodePartial(payload, &v); err != nil {
		return "", err
	}
	if v.Done {
		return v.Title + " (done)", nil
	}
	return v.Title, nil
}

func describeTransaction(payload []byte) (string, error) {
	var v struct {
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Direction string `json:"direction"`
		Note      string `json:"note"`
	}
	if err := decodePartial(payload, &v); err != nil {
		return "", err
	}
	s := fmt.Sprintf("%s %s", v.Direction, money(v.Amount, v.Currency))
	if v.Note != "" {
		s += ": " + v.Note
	}
	return s, nil
}

func describeBudget(payload []byte) (string, error) {
	var v struct {
		Name        string `json:"name"`
		LimitAmount int64  `json:"limit_amount"`
		Currency    string `json:"currency"`
	}
	if err := decodePartial(payload, &v); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s limit", v.Name, money(v.LimitAmount, v.Currency)), nil
}

func describeGoal(payload []byte) (string, error) {
	var v struct {
		Name         string `json:"name"`
		TargetAmount int64  `json:"target_amount"`
		SavedAmount  int64  `json:"saved_amount"`
		Currency     string `json:"currency"`
	}
	if err := decodePartial(payload, &v); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s of %s saved", v.Name, money(v.SavedAmount, v.Currency), money(v.TargetAmount, v.Currency)), nil
}
