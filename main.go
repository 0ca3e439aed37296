package main

import (
	"net/http"

	"suratgen/artifact"
	"suratgen/bizerror"
	"suratgen/client/directory"
	"suratgen/client/qrimg"
	"suratgen/client/records"
	"suratgen/infra/tracing"
	"suratgen/servehttp"
	"suratgen/session"
	"suratgen/surattugas"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("service start")

	closer, err := tracing.Bootstrap()
	if err != nil {
		logrus.Warnf("tracing disabled: %v", err)
	} else {
		defer closer.Close()
	}

	store, err := artifact.NewStoreFromEnv()
	if err != nil {
		logrus.Fatalf("artifact store bootstrap failed: %v", err)
	}
	artifacts := &artifact.Generator{Provider: qrimg.NewClientFromEnv(), Store: store}

	recordsClient := records.NewClientFromEnv()
	directoryClient := directory.NewClientFromEnv()

	cfg := surattugas.ConfigFromEnv()
	pipeline := surattugas.NewPipeline(recordsClient, artifacts, cfg)

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "suratgen")
	})

	auth := session.CookieAuthFilter()
	servehttp.RegisterSuratTugasHandler(engine, pipeline, recordsClient, artifacts, cfg, auth)
	servehttp.RegisterDirectoryHandler(engine, directoryClient, auth)
	servehttp.RegisterVerificationHandler(engine, recordsClient)

	servehttp.StartHTTPServer(engine)
}
