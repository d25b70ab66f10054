// Package s3 implements modelstore.Store for Amazon S3.
//
// Example:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("models/"))
//	err := modelstore.Save(ctx, store, "pca.model", result.Projection, modelstore.CompressionZSTD)
package s3
