package gondola_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestGondola(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gondola Suite")
}
