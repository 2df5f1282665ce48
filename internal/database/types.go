package database

// Descriptor is a face embedding produced by the recognition model.
// Its length is fixed by the model (constants.DescriptorDim).
type Descriptor []float32

// Record is a labeled descriptor stored in the database
type Record struct {
	ID         int64
	Label      string
	Descriptor Descriptor
}

// LabelCount is the number of records enrolled under one label
type LabelCount struct {
	Label string `json:"name"`
	Count int    `json:"count"`
}
