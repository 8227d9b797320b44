package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	i := NoopInspectorHooks{}
	i.OnSyncStart(ctx, "/srv/shop", "session")
	i.OnSyncComplete(ctx, "/srv/shop", "session", 3, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "report")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "report", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "repo.packagist.org", "/p2/monolog/monolog.json")
	h.OnResponse(ctx, "GET", "repo.packagist.org", "/p2/monolog/monolog.json", 200, time.Second)
	h.OnError(ctx, "GET", "repo.packagist.org", "/p2/monolog/monolog.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Inspector().(NoopInspectorHooks); !ok {
		t.Error("Inspector() should return NoopInspectorHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customInspector := &testInspectorHooks{}
	SetInspectorHooks(customInspector)
	if Inspector() != customInspector {
		t.Error("SetInspectorHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Inspector().(NoopInspectorHooks); !ok {
		t.Error("Reset() should restore NoopInspectorHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testInspectorHooks{}
	SetInspectorHooks(custom)
	SetInspectorHooks(nil)

	if Inspector() != custom {
		t.Error("SetInspectorHooks(nil) should be ignored")
	}

	Reset()
}

type testInspectorHooks struct{ NoopInspectorHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
