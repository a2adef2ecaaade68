// prover.go - Groth16 setup, proving and verification for the ID circuit.

package idcircuit

import (
	"bytes"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"rollupstate/internal/account"
)

// Curve is the curve the ID circuit is proven over.
const Curve = ecc.BN254

// Compile builds the constraint system of Circuit.
func Compile() (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(Curve.ScalarField(), r1cs.NewBuilder, &Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile id circuit: %w", err)
	}
	return ccs, nil
}

func assignment(id account.ID) *Circuit {
	return &Circuit{Prefix: id.Prefix().Uint64(), Suffix: id.Suffix().Uint64()}
}

// Prove produces a serialized Groth16 proof that id is valid.
func Prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, id account.ID) ([]byte, error) {
	w, err := frontend.NewWitness(assignment(id), Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof marshaling failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify checks a proof produced by Prove against id.
func Verify(proofBytes []byte, vk groth16.VerifyingKey, id account.ID) error {
	proof := groth16.NewProof(Curve)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("proof unmarshaling failed: %w", err)
	}
	w, err := frontend.NewWitness(assignment(id), Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}
	if err := groth16.Verify(proof, vk, w); err != nil {
		return fmt.Errorf("id proof verification failed: %w", err)
	}
	return nil
}

// SaveVerifyingKey writes vk to path.
func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = vk.WriteTo(f)
	return err
}

// LoadVerifyingKey reads a verifying key written by SaveVerifyingKey.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(Curve)
	_, err = vk.ReadFrom(f)
	return vk, err
}
