package quality

// DatasetDescriptor maps a RINGO output file to the reporting-year label
// shown next to the x-axis title.
type DatasetDescriptor struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Built-in dataset identifiers.
const (
	Dataset2022 = "SoI22.csv"
	Dataset2023 = "17SoI23.csv"
)

// ReferenceDataset is the file the original site list was taken from.
const ReferenceDataset = Dataset2023

var datasetOrder = []string{Dataset2022, Dataset2023}

var datasetLabels = map[string]string{
	Dataset2022: "(2022)",
	Dataset2023: "(2023)",
}

// BuiltinDatasets returns the dataset descriptors that ship with the binary.
func BuiltinDatasets() []DatasetDescriptor {
	out := make([]DatasetDescriptor, 0, len(datasetOrder))
	for _, id := range datasetOrder {
		out = append(out, DatasetDescriptor{ID: id, Label: datasetLabels[id]})
	}
	return out
}

// LabelForDataset returns the year label for a built-in dataset id. The
// boolean is false for unknown ids.
func LabelForDataset(id string) (string, bool) {
	label, ok := datasetLabels[id]
	return label, ok
}
