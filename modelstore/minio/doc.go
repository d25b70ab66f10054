// Package minio implements modelstore.Store for MinIO and other
// S3-compatible object storage.
//
// Example:
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	store := miniostore.NewStore(client, "models", "manifold/")
//	err := modelstore.Save(ctx, store, "pca.model", result.Projection, modelstore.CompressionZSTD)
package minio
