package classifier

// TensorSpec describes the input tensor contract of an architecture: spatial
// resolution and the per-channel normalization constants the network was
// trained with. The constants must match the training pipeline exactly; a
// mismatch degrades accuracy silently rather than erroring.
type TensorSpec struct {
	// Size is the spatial resolution S of the 1x3xSxS input tensor.
	Size int
	// Mean and Std are per-channel (RGB) normalization constants applied
	// after scaling pixel values to [0,1].
	Mean [3]float32
	Std  [3]float32
}

// Values returns the number of float32 values in one input tensor.
func (s TensorSpec) Values() int { return 3 * s.Size * s.Size }

// imagenetMean/Std are the torchvision normalization constants used by the
// fine-tuning pipeline for every supported backbone.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// architectures maps a declared architecture identifier to its input contract.
var architectures = map[string]TensorSpec{
	"efficientnet_b0": {Size: 224, Mean: imagenetMean, Std: imagenetStd},
	"efficientnet_b1": {Size: 240, Mean: imagenetMean, Std: imagenetStd},
	"resnet18":        {Size: 224, Mean: imagenetMean, Std: imagenetStd},
	"resnet50":        {Size: 224, Mean: imagenetMean, Std: imagenetStd},
}

// SpecFor resolves the tensor contract for an architecture identifier.
func SpecFor(name string) (TensorSpec, error) {
	spec, ok := architectures[name]
	if !ok {
		return TensorSpec{}, unknownArchitectureError{name: name}
	}
	return spec, nil
}
