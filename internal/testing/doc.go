// Package testing provides test utilities, builders, and fixtures shared by
// the kconsole test suites.
//
//   - ObjectBuilder: fluent builder for unstructured cluster objects
//   - ClusterFixture: fake typed and dynamic clients behind a k8s.Client
//   - MockCreator: testify mock of the wizard creation API
//
// Usage:
//
//	svc := testing.KnativeService("shop", "demo").WithLabels(map[string]string{"app": "shop"}).Build()
//	fixture := testing.NewClusterFixture(svc)
//	client := fixture.Client()
package testing
