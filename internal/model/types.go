package model

// Schema records the exact feature layout a model was trained on: the
// ordered feature names, the per-feature imputation defaults computed at
// train time, and whether the target was log-transformed. The same schema
// drives both the boosted-tree model and the interpretability OLS fit.
type Schema struct {
	FeatureNames []string           `json:"feature_names"`
	Defaults     map[string]float64 `json:"defaults"`
	LogTarget    bool               `json:"log_target"`
}

// NumFeatures returns the number of features in the schema.
func (s Schema) NumFeatures() int {
	return len(s.FeatureNames)
}

// Index returns the column index of a feature name, or -1 when the schema
// does not contain it.
func (s Schema) Index(name string) int {
	for i, n := range s.FeatureNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Dataset is a dense feature matrix with an aligned target vector, bound to
// the schema that produced it. Rows are listings, columns follow
// Schema.FeatureNames.
type Dataset struct {
	Features [][]float64
	Target   []float64
	Schema   Schema
}

// Rows returns the number of rows in the dataset.
func (d Dataset) Rows() int {
	return len(d.Features)
}

// Metrics holds held-out accuracy metrics. MAE and MSE are always reported
// in the target's original units; R2 is computed on the model's training
// scale, matching how the boosted model was fit.
type Metrics struct {
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
}

// TrainedModel owns the fitted boosted-tree ensemble and the schema it was
// trained on. Read-only after training; consumed by Evaluator and Attributor.
type TrainedModel struct {
	Ensemble *Ensemble
	Schema   Schema
}

// Predict returns the model's prediction for one feature vector, on the
// training scale (log units when Schema.LogTarget is set).
func (m *TrainedModel) Predict(features []float64) float64 {
	return m.Ensemble.Predict(features)
}

// OLSSummary reports the auxiliary ordinary-least-squares fit used purely
// for coefficient-level interpretation. Terms[0] is the intercept. Its R2
// is expected to trail the boosted model's and is reported as-is.
type OLSSummary struct {
	Terms []OLSTerm `json:"terms"`
	R2    float64   `json:"r2"`
	Rows  int       `json:"rows"`
}

// OLSTerm is one coefficient of the linear fit with its significance.
type OLSTerm struct {
	Name        string  `json:"name"`
	Coefficient float64 `json:"coefficient"`
	StdError    float64 `json:"std_error"`
	TValue      float64 `json:"t_value"`
	PValue      float64 `json:"p_value"`
}

// FeatureAttribution is a feature's attribution value: a per-instance
// contribution, or a mean absolute contribution in a global ranking.
type FeatureAttribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// InstanceExplanation is an additive attribution decomposition for a single
// record: Baseline plus the sum of contribution values equals Prediction.
type InstanceExplanation struct {
	Index         int                  `json:"index"`
	Baseline      float64              `json:"baseline"`
	Contributions []FeatureAttribution `json:"contributions"`
	Prediction    float64              `json:"prediction"`
}
