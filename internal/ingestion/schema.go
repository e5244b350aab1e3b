package ingestion

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed featurecollection.schema.json
var featureCollectionSchema []byte

var featureCollectionLoader = gojsonschema.NewBytesLoader(featureCollectionSchema)

// validateFeatureCollection rejects payloads that are not a GeoJSON
// FeatureCollection before they reach the decoders.
func validateFeatureCollection(data []byte) error {
	result, err := gojsonschema.Validate(featureCollectionLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("invalid feature collection: %s", strings.Join(errs, "; "))
	}
	return nil
}
