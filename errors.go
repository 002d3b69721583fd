package clustgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/clustgo/distance"
	"github.com/hupe1980/clustgo/feature"
	"github.com/hupe1980/clustgo/medoid"
	"github.com/hupe1980/clustgo/metric"
	"github.com/hupe1980/clustgo/profile"
	"github.com/hupe1980/clustgo/selection"
	"github.com/hupe1980/clustgo/stability"
)

var (
	// ErrInvalidInput is returned when records, schema, or configuration
	// cannot be processed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateClustering is returned when the data cannot sustain the
	// requested cluster structure.
	ErrDegenerateClustering = errors.New("degenerate clustering")

	// ErrSelectionFailed is returned when no scanned cluster count
	// produced a valid partition.
	ErrSelectionFailed = errors.New("model selection failed")

	// ErrStabilityFailed is returned when bootstrap validation completed
	// no trials.
	ErrStabilityFailed = errors.New("stability validation failed")
)

// translateError maps stage errors to the package's error taxonomy so that
// callers can branch on the root sentinels with errors.Is.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Errors minted by this package already carry a root sentinel.
	if errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDegenerateClustering) ||
		errors.Is(err, ErrSelectionFailed) ||
		errors.Is(err, ErrStabilityFailed) {
		return err
	}

	var (
		missingAttr *feature.ErrMissingAttribute
		badShape    *distance.ErrInvalidShape
		badRange    *selection.ErrInvalidRange
		invalidK    *medoid.ErrInvalidK
		collapsed   *medoid.ErrDegenerate
		noViable    *selection.ErrNoViableK
		allSkipped  *stability.ErrAllTrialsSkipped
	)

	switch {
	case errors.Is(err, feature.ErrNoRecords),
		errors.Is(err, feature.ErrEmptySchema),
		errors.Is(err, stability.ErrInvalidConfig),
		errors.Is(err, metric.ErrInvalidLabels),
		errors.Is(err, profile.ErrInvalidLabels),
		errors.As(err, &missingAttr),
		errors.As(err, &badShape),
		errors.As(err, &badRange),
		errors.As(err, &invalidK):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)

	case errors.Is(err, metric.ErrSingleCluster),
		errors.Is(err, metric.ErrAllSingletons),
		errors.As(err, &collapsed):
		return fmt.Errorf("%w: %w", ErrDegenerateClustering, err)

	case errors.As(err, &noViable):
		return fmt.Errorf("%w: %w", ErrSelectionFailed, err)

	case errors.As(err, &allSkipped):
		return fmt.Errorf("%w: %w", ErrStabilityFailed, err)
	}

	return err
}
