package tracing

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingIngress opens a server span per request, continuing the caller's
// trace when the inbound headers carry one. The span is attached to the
// request context so upstream clients can branch child spans off it.
func TracingIngress() gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()
		spanCtx, _ := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header))

		operation := c.FullPath()
		if operation == "" {
			operation = c.Request.URL.Path
		}
		serverSpan := tracer.StartSpan(c.Request.Method+" "+operation, ext.RPCServerOption(spanCtx))
		defer serverSpan.Finish()

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), serverSpan))

		c.Next()
	}
}
