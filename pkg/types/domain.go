package types

// Prediction is the outcome of one forward pass over a preprocessed image.
type Prediction struct {
	// Predicted class, one of the model's label vocabulary.
	Label string
	// Probability of the predicted class, in [0,1].
	Confidence float32
	// Probability per class, keyed by label. Sums to 1 within float tolerance.
	Probabilities map[string]float32
}

// DefaultLabels is the vocabulary the bundled brain-MRI model was trained on,
// in output-index order.
var DefaultLabels = []string{"glioma", "meningioma", "notumor", "pituitary"}
