package classifier

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	ort "github.com/yalue/onnxruntime_go"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
	"github.com/anime-shed/recycling-guide-go/pkg/validation"
)

// ModelMetadata describes the tensors of an exported model. Classes are catalog ids
// in output order.
type ModelMetadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// LoadModelMetadata reads and checks a metadata file
func LoadModelMetadata(path string) (ModelMetadata, error) {
	var meta ModelMetadata

	raw, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if len(meta.Classes) == 0 {
		return meta, fmt.Errorf("metadata lists no classes")
	}
	if meta.ImageSize <= 0 {
		return meta, fmt.Errorf("metadata image_size must be > 0 (got %d)", meta.ImageSize)
	}
	if want := int64(3 * meta.ImageSize * meta.ImageSize); elements(meta.InputShape) != want {
		return meta, fmt.Errorf("input_shape %v does not hold a 3x%dx%d image", meta.InputShape, meta.ImageSize, meta.ImageSize)
	}
	if elements(meta.OutputShape) < int64(len(meta.Classes)) {
		return meta, fmt.Errorf("output_shape %v is smaller than %d classes", meta.OutputShape, len(meta.Classes))
	}
	return meta, nil
}

func elements(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// ONNXClassifier runs an image classification model with onnxruntime.
// Input and output tensors are shared, so inference is serialised.
type ONNXClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	metadata     ModelMetadata
	records      RecordSource
}

// NewONNXClassifier loads the model. libraryPath may be empty to use the
// platform default onnxruntime shared library.
func NewONNXClassifier(modelPath, metadataPath, libraryPath string, records RecordSource) (*ONNXClassifier, error) {
	metadata, err := LoadModelMetadata(metadataPath)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = DefaultOptions().Records
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"model":   modelPath,
		"classes": len(metadata.Classes),
		"size":    metadata.ImageSize,
	}).Info("ONNX classifier loaded")

	return &ONNXClassifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		metadata:     metadata,
		records:      records,
	}, nil
}

// Name returns the backend name
func (c *ONNXClassifier) Name() string {
	return NameONNX
}

// Classify decodes the data URL, runs the model and ranks catalog records by score
func (c *ONNXClassifier) Classify(ctx context.Context, payload string) (*models.ClassificationResult, error) {
	if err := requirePayload(payload); err != nil {
		return nil, err
	}

	decoded, err := validation.DecodeDataURL(payload)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(decoded.Data))
	if err != nil {
		return nil, apperrors.NewInvalidInputError(
			fmt.Sprintf("cannot decode %s image", decoded.DetectedMIME), err)
	}

	input := Preprocess(img, c.metadata.ImageSize)

	if err := ctx.Err(); err != nil {
		return nil, apperrors.FromContext(err, "classification canceled")
	}

	start := time.Now()
	scores, err := c.infer(input)
	if err != nil {
		return nil, apperrors.NewInternalAnalysisError("model inference failed", err)
	}
	logger.WithContext(ctx).WithField("inference_time", time.Since(start)).Debug("ONNX inference finished")

	n := len(c.metadata.Classes)
	if len(scores) < n {
		n = len(scores)
	}
	result := Rank(Softmax(scores[:n]), c.metadata.Classes[:n], c.records())
	if result == nil {
		return nil, apperrors.NewInternalAnalysisError("model classes do not match the catalog", nil)
	}
	return result, nil
}

func (c *ONNXClassifier) infer(input []float32) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, fmt.Errorf("classifier is closed")
	}
	copy(c.inputTensor.GetData(), input)
	if err := c.session.Run(); err != nil {
		return nil, err
	}
	return append([]float32(nil), c.outputTensor.GetData()...), nil
}

// Close releases the session, its tensors and the runtime environment
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inputTensor != nil {
		c.inputTensor.Destroy()
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
		c.outputTensor = nil
	}
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	return ort.DestroyEnvironment()
}
