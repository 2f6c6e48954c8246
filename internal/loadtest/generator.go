package loadtest

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/pkg/logger"
)

// Categorical values seen in the bank marketing dataset.
var (
	jobs = []string{
		"admin.", "blue-collar", "entrepreneur", "housemaid", "management", "retired",
		"self-employed", "services", "student", "technician", "unemployed", "unknown",
	}
	maritals   = []string{"married", "single", "divorced"}
	educations = []string{"primary", "secondary", "tertiary", "unknown"}
	yesNo      = []string{"no", "yes"}
	contacts   = []string{"cellular", "telephone", "unknown"}
	months     = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
	poutcomes  = []string{"failure", "other", "success", "unknown"}
)

// Numeric ranges for generated customers.
const (
	minAge        = 18
	ageSpan       = 78
	minBalance    = -2000.0
	balanceSpan   = 30000.0
	maxDay        = 31
	maxDuration   = 3000
	maxCampaign   = 20
	maxPdays      = 400
	maxPrevious   = 10
	noContactRate = 0.8
)

// generateCustomers returns n samples. The same seed yields the same samples,
// ids included.
func generateCustomers(ctx context.Context, seed uint64, n int) ([]Sample, error) {
	logger.Get().Info(ctx, "generating customers", logger.Int("count", n), logger.Any("seed", seed))

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	rng := rand.New(src)

	samples := make([]Sample, n)
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("sample %d id: %w", i, err)
		}
		samples[i] = Sample{ID: id.String(), Customer: randomCustomer(rng)}
	}
	return samples, nil
}

func randomCustomer(rng *rand.Rand) model.Customer {
	c := model.Customer{
		Age:       minAge + rng.IntN(ageSpan),
		Job:       pick(rng, jobs),
		Marital:   pick(rng, maritals),
		Education: pick(rng, educations),
		Default:   pick(rng, yesNo),
		Balance:   minBalance + rng.Float64()*balanceSpan,
		Housing:   pick(rng, yesNo),
		Loan:      pick(rng, yesNo),
		Contact:   pick(rng, contacts),
		Day:       1 + rng.IntN(maxDay),
		Month:     pick(rng, months),
		Duration:  rng.IntN(maxDuration),
		Campaign:  1 + rng.IntN(maxCampaign),
		Pdays:     -1,
		Poutcome:  "unknown",
	}
	// Most customers were never contacted in a previous campaign.
	if rng.Float64() >= noContactRate {
		c.Pdays = rng.IntN(maxPdays)
		c.Previous = 1 + rng.IntN(maxPrevious)
		c.Poutcome = pick(rng, poutcomes)
	}
	return c
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}
