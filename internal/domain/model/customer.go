// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/bankpredict/internal/domain/features"
)

// ErrInvalidCustomer is the kind of every validation failure in this file.
var ErrInvalidCustomer = errors.New("invalid customer")

// Customer is one bank-marketing prediction request.
// Fields mirror the OpenAPI schema for /predict.
type Customer struct {
	Age       int     `json:"age"`
	Job       string  `json:"job"`
	Marital   string  `json:"marital"`
	Education string  `json:"education"`
	Default   string  `json:"default"`
	Balance   float64 `json:"balance"`
	Housing   string  `json:"housing"`
	Loan      string  `json:"loan"`
	Contact   string  `json:"contact"`
	Day       int     `json:"day"`
	Month     string  `json:"month"`
	Duration  int     `json:"duration"`
	Campaign  int     `json:"campaign"`
	Pdays     int     `json:"pdays"`
	Previous  int     `json:"previous"`
	Poutcome  string  `json:"poutcome"`
}

// RequiredFields lists the JSON keys every request must carry.
var RequiredFields = []string{
	"age", "job", "marital", "education", "default", "balance", "housing", "loan",
	"contact", "day", "month", "duration", "campaign", "pdays", "previous", "poutcome",
}

// DecodeCustomer parses a JSON object into a Customer. Every key in
// RequiredFields must be present; unknown keys are ignored.
func DecodeCustomer(data []byte) (Customer, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Customer{}, fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}
	var missing []string
	for _, k := range RequiredFields {
		if v, ok := keys[k]; !ok || string(v) == "null" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Customer{}, fmt.Errorf("%w: missing %s", ErrInvalidCustomer, strings.Join(missing, ", "))
	}
	var c Customer
	if err := json.Unmarshal(data, &c); err != nil {
		return Customer{}, fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}
	if err := c.Validate(); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// categoricalFields lists the categorical keys in request order.
var categoricalFields = []string{
	"job", "marital", "education", "default", "housing", "loan", "contact", "month", "poutcome",
}

// Validate checks the categorical fields are non-blank. The first blank field
// in request order is reported.
func (c Customer) Validate() error {
	values := c.categorical()
	for _, name := range categoricalFields {
		if strings.TrimSpace(values[name]) == "" {
			return fmt.Errorf("%w: %s must not be blank", ErrInvalidCustomer, name)
		}
	}
	return nil
}

// Raw converts the record into the loosely typed form the feature builder reads.
func (c Customer) Raw() features.Raw {
	return features.Raw{
		Numeric: map[string]float64{
			"age":      float64(c.Age),
			"balance":  c.Balance,
			"day":      float64(c.Day),
			"duration": float64(c.Duration),
			"campaign": float64(c.Campaign),
			"pdays":    float64(c.Pdays),
			"previous": float64(c.Previous),
		},
		Categorical: c.categorical(),
	}
}

func (c Customer) categorical() map[string]string {
	return map[string]string{
		"job":       c.Job,
		"marital":   c.Marital,
		"education": c.Education,
		"default":   c.Default,
		"housing":   c.Housing,
		"loan":      c.Loan,
		"contact":   c.Contact,
		"month":     c.Month,
		"poutcome":  c.Poutcome,
	}
}
