package llm

import "context"

// mockPatch is the canned response for the mock provider: a minimal
// valid marker-wrapped diff, useful for exercising the pipeline with
// no network and no local tools.
const mockPatch = `PATCH_START
diff --git a/hello.txt b/hello.txt
new file mode 100644
index 0000000..a71968a
--- /dev/null
+++ b/hello.txt
@@ -0,0 +1 @@
+Hello from the mock provider
PATCH_END
`

// MockClient returns a fixed marker-wrapped patch for every call.
type MockClient struct {
	// Content overrides the canned response when non-empty.
	Content string
}

// NewMockClient creates a mock provider.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Call ignores the prompt and returns the canned patch.
func (c *MockClient) Call(_ context.Context, _ Request) (Response, error) {
	if c.Content != "" {
		return Response{Content: c.Content}, nil
	}
	return Response{Content: mockPatch}, nil
}
