package bloch_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBloch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bloch Suite")
}
