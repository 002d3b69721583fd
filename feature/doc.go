// Package feature turns heterogeneous subject records into a numeric matrix
// suitable for mixed-type distance computation.
//
// Records carry three kinds of attributes:
//
//   - Continuous: real-valued measurements, imputed and standardized
//   - Binary: yes/no flags encoded as 0/1
//   - Categorical: nominal codes expanded to one-hot indicator columns
//
// The encoder keeps every indicator column and tags each output column with
// the kind it came from, so downstream stages can scale continuous columns
// and match indicator columns without guessing.
//
// # Usage
//
//	enc := feature.NewEncoder(schema)
//	m, err := enc.Encode(records)
//
// Encoding is deterministic: the same schema, options, and records always
// produce the same matrix, byte for byte.
package feature
