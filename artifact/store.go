package artifact

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"time"

	"suratgen/bizerror"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/patrickmn/go-cache"
)

// Store keeps QR rasters keyed by record id. Artifacts are disposable and
// regenerable; writes for the same id are last-write-wins.
type Store interface {
	Put(documentID string, img []byte) error
	Get(documentID string) ([]byte, error)
}

const artifactExpiration = 1 * time.Hour

// CacheStore is the default transient backend.
type CacheStore struct {
	c *cache.Cache
}

func NewCacheStore() *CacheStore {
	return &CacheStore{c: cache.New(artifactExpiration, 10*time.Minute)}
}

func (s *CacheStore) Put(documentID string, img []byte) error {
	s.c.Set(documentID, img, cache.DefaultExpiration)
	return nil
}

func (s *CacheStore) Get(documentID string) ([]byte, error) {
	value, found := s.c.Get(documentID)
	if !found {
		return nil, bizerror.ErrArtifactNotFound
	}
	img, ok := value.([]byte)
	if !ok {
		return nil, bizerror.ErrArtifactNotFound
	}
	return img, nil
}

var (
	QrBucket      *oss.Bucket
	GetObjectFunc func(key string) (io.ReadCloser, error)
	PutObjectFunc func(key string, r io.Reader) error
)

// OssStore keeps artifacts in an OSS bucket under qrst/{id}.png, for
// deployments where generation and download are served by different
// instances.
type OssStore struct {
}

func BootstrapOss() error {
	bucket, err := BuildBucketFromEnv()
	if err != nil {
		return err
	}
	QrBucket = bucket
	GetObjectFunc = getObject
	PutObjectFunc = putObject
	return nil
}

func BuildBucketFromEnv() (*oss.Bucket, error) {
	endpoint := os.ExpandEnv(os.Getenv("OSS_ENDPOINT"))
	if endpoint == "" {
		endpoint = "dummy"
	}
	accessKey := os.Getenv("OSS_ACCESS_KEY")
	secretKey := os.Getenv("OSS_SECRET_KEY")
	bucket := os.Getenv("OSS_BUCKET")
	if bucket == "" {
		bucket = "suratgen"
	}
	return BuildBucket(endpoint, accessKey, secretKey, bucket)
}

func BuildBucket(endpoint, accessKey, secretKey, bucketName string) (*oss.Bucket, error) {
	cli, err := oss.New(endpoint, accessKey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}
	return cli.Bucket(bucketName)
}

func ossKey(documentID string) string {
	return "qrst/" + documentID + ".png"
}

func (s *OssStore) Put(documentID string, img []byte) error {
	return PutObjectFunc(ossKey(documentID), bytes.NewReader(img))
}

func (s *OssStore) Get(documentID string) ([]byte, error) {
	r, err := GetObjectFunc(ossKey(documentID))
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrArtifactNotFound
		}
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

func getObject(key string) (io.ReadCloser, error) {
	return QrBucket.GetObject(key)
}

func putObject(key string, r io.Reader) error {
	return QrBucket.PutObject(key, r)
}

// NewStoreFromEnv selects the backend: ARTIFACT_STORE=oss enables the OSS
// bucket, anything else uses the in-memory cache.
func NewStoreFromEnv() (Store, error) {
	if os.Getenv("ARTIFACT_STORE") == "oss" {
		if err := BootstrapOss(); err != nil {
			return nil, err
		}
		return &OssStore{}, nil
	}
	return NewCacheStore(), nil
}
