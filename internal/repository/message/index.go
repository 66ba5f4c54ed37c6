package message

import "github.com/hegdeshashank73/chat-analyser/internal/db"

// buildIndex defines the FT index over message hashes: sender (TAG),
// timestamp (NUMERIC, unix seconds), content (TEXT) and the embedding
// vector (HNSW, cosine distance).
func buildIndex(name, prefix string, vectorDim int, hnsw HNSWConfig) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:        name,
		StorageType: db.StorageHash,
		Prefixes:    []string{prefix},
		Fields: []db.IndexField{
			{Name: "sender", Type: db.IndexFieldTag},
			{Name: "timestamp", Type: db.IndexFieldNumeric},
			{Name: "__content", Type: db.IndexFieldText},
			{
				Name:              "__vector",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnsw.M,
				VectorEFConstruct: hnsw.EFConstruct,
			},
		},
	}
}
