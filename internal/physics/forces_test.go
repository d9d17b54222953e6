package physics

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blocksim/internal/dynamo"
)

var _ = Describe("Accumulate", func() {
	It("sums a five block line pushing along x", func() {
		body, err := NewRigidBody(Bar(0, 4, unit))
		Expect(err).NotTo(HaveOccurred())

		loads, err := Accumulate(body, dynamo.Vec3{})
		Expect(err).NotTo(HaveOccurred())
		Expect(loads.Force).To(Equal(dynamo.Vec3{5, 0, 0}))
		Expect(loads.Torque).To(Equal(dynamo.Vec3{0, 0, 0}))
		Expect(loads.Mass).To(Equal(5.0))
	})

	It("yields pure torque for an opposed pair", func() {
		up := Block{ThrustDir: dynamo.Vec3{0, 1, 0}, ThrustForce: 3, Density: 1}
		down := Block{ThrustDir: dynamo.Vec3{0, -1, 0}, ThrustForce: 3, Density: 1}
		body, err := NewRigidBody(map[Coord]Block{{-1, 0, 0}: up, {1, 0, 0}: down})
		Expect(err).NotTo(HaveOccurred())

		loads, err := Accumulate(body, dynamo.Vec3{})
		Expect(err).NotTo(HaveOccurred())
		Expect(loads.Force).To(Equal(dynamo.Vec3{0, 0, 0}))
		Expect(loads.Torque).To(Equal(dynamo.Vec3{0, 0, -6}))
	})

	It("takes torque about the reference position", func() {
		lateral := Block{ThrustDir: dynamo.Vec3{0, 1, 0}, ThrustForce: 1, Density: 1}
		body, err := NewRigidBody(map[Coord]Block{{2, 0, 0}: lateral})
		Expect(err).NotTo(HaveOccurred())

		atOrigin, err := Accumulate(body, dynamo.Vec3{})
		Expect(err).NotTo(HaveOccurred())
		Expect(atOrigin.Torque).To(Equal(dynamo.Vec3{0, 0, 2}))

		atBlock, err := Accumulate(body, dynamo.Vec3{2, 0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(atBlock.Torque).To(Equal(dynamo.Vec3{0, 0, 0}))
	})

	It("scales force by the thrust direction length", func() {
		long := Block{ThrustDir: dynamo.Vec3{0, 0, 2}, ThrustForce: 1.5, Density: 1}
		body, err := NewRigidBody(map[Coord]Block{{0, 0, 0}: long})
		Expect(err).NotTo(HaveOccurred())

		loads, err := Accumulate(body, dynamo.Vec3{})
		Expect(err).NotTo(HaveOccurred())
		Expect(loads.Force).To(Equal(dynamo.Vec3{0, 0, 3}))
	})

	It("ignores air resistance", func() {
		drag := unit
		drag.AirResistance = 0.9
		plain, _ := NewRigidBody(Bar(0, 2, unit))
		dragged, _ := NewRigidBody(Bar(0, 2, drag))

		a, err := Accumulate(plain, dynamo.Vec3{1, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		b, err := Accumulate(dragged, dynamo.Vec3{1, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal(a))
	})

	It("halves accelerations when every density doubles", func() {
		heavy := unit
		heavy.Density = 2
		tilted := func(b Block) map[Coord]Block {
			return Merge(Bar(0, 3, b), map[Coord]Block{{0, 1, 0}: b.WithThrust(dynamo.Vec3{0, 0, 1}, 2)})
		}
		light, _ := NewRigidBody(tilted(unit))
		dense, _ := NewRigidBody(tilted(heavy))

		l1, err := Accumulate(light, dynamo.Vec3{})
		Expect(err).NotTo(HaveOccurred())
		l2, err := Accumulate(dense, dynamo.Vec3{})
		Expect(err).NotTo(HaveOccurred())

		lin1, ang1, _ := l1.Accelerations()
		lin2, ang2, _ := l2.Accelerations()
		Expect(lin2.Len()).To(BeNumerically("~", lin1.Len()/2, 1e-12))
		Expect(ang2.Len()).To(BeNumerically("~", ang1.Len()/2, 1e-12))
		Expect(ang1.Len()).To(BeNumerically(">", 0))
	})

	DescribeTable("rejects bodies without mass",
		func(blocks map[Coord]Block) {
			body, err := NewRigidBody(blocks)
			Expect(err).NotTo(HaveOccurred())
			_, err = Accumulate(body, dynamo.Vec3{})
			Expect(errors.Is(err, dynamo.ErrInvalidBody)).To(BeTrue())
		},
		Entry("empty", map[Coord]Block{}),
		Entry("all zero density", Bar(0, 3, Block{ThrustDir: dynamo.Vec3{1, 0, 0}, ThrustForce: 1})),
	)

	It("rejects a nil body", func() {
		_, err := Accumulate(nil, dynamo.Vec3{})
		Expect(err).To(MatchError(dynamo.ErrInvalidBody))
	})
})
