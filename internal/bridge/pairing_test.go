package bridge_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nilswitch/rcbridge/internal/blobstore"
	"github.com/nilswitch/rcbridge/internal/blobstore/fsstore"
	"github.com/nilswitch/rcbridge/internal/bridge"
	"github.com/nilswitch/rcbridge/internal/peer"
	"github.com/nilswitch/rcbridge/internal/protocol"
	"github.com/nilswitch/rcbridge/internal/quality"
	"github.com/nilswitch/rcbridge/internal/radio/hostsim"
)

var senderAddr = [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
var receiverAddr = [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}

func newPair(medium *hostsim.Medium) (senderCore *bridge.Core, sender *bridge.Sender, senderStore *fsstore.Store,
	receiverCore *bridge.Core, receiver *bridge.Receiver, receiverStore *fsstore.Store) {

	senderStore, err := fsstore.New(GinkgoT().TempDir())
	Expect(err).NotTo(HaveOccurred())
	receiverStore, err = fsstore.New(GinkgoT().TempDir())
	Expect(err).NotTo(HaveOccurred())

	senderRadio := hostsim.NewRadio(senderAddr, medium)
	receiverRadio := hostsim.NewRadio(receiverAddr, medium)

	senderCore = bridge.New(senderRadio, senderStore)
	receiverCore = bridge.New(receiverRadio, receiverStore)

	sender = bridge.NewSender(senderCore, nil)
	receiver = bridge.NewReceiver(receiverCore, peer.CryptoKeySource, nil)

	senderCore.SetRole(sender)
	receiverCore.SetRole(receiver)

	return
}

var _ = Describe("Cold pairing", func() {
	It("brings both endpoints to Paired with matching blobs", func() {
		medium := hostsim.NewMedium()
		senderCore, _, senderStore, receiverCore, _, receiverStore := newPair(medium)

		Expect(senderCore.Init()).To(Succeed())
		Expect(receiverCore.Init()).To(Succeed())
		Expect(senderCore.State()).To(Equal(bridge.Unpaired))
		Expect(receiverCore.State()).To(Equal(bridge.Unpaired))

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		go senderCore.Run(ctx)
		go receiverCore.Run(ctx)

		Eventually(senderCore.State, 2*time.Second, 5*time.Millisecond).Should(Equal(bridge.Paired))
		Eventually(receiverCore.State, 2*time.Second, 5*time.Millisecond).Should(Equal(bridge.Paired))

		Expect(senderCore.Peer().Addr).To(Equal(receiverAddr))
		Expect(receiverCore.Peer().Addr).To(Equal(senderAddr))
		Expect(senderCore.Peer().Key).To(Equal(receiverCore.Peer().Key))

		senderBlob, err := senderStore.Read(blobstore.PeerBlobName)
		Expect(err).NotTo(HaveOccurred())
		receiverBlob, err := receiverStore.Read(blobstore.PeerBlobName)
		Expect(err).NotTo(HaveOccurred())
		// Each blob is the counterpart's address followed by the shared key,
		// so the keys match and the address prefixes name the other side.
		Expect(senderBlob[6:]).To(Equal(receiverBlob[6:]))
		Expect(senderBlob[:6]).To(Equal(receiverAddr[:]))
		Expect(receiverBlob[:6]).To(Equal(senderAddr[:]))
	})
})

var _ = Describe("Warm boot", func() {
	It("registers the persisted peer without emitting SEARCH", func() {
		medium := hostsim.NewMedium()
		store, err := fsstore.New(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		known := peer.Peer{Addr: receiverAddr, Key: [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}}
		Expect(peer.Save(store, known)).To(Succeed())

		radio := hostsim.NewRadio(senderAddr, medium)
		core := bridge.New(radio, store)
		sender := bridge.NewSender(core, nil)
		core.SetRole(sender)

		listener := hostsim.NewRadio(receiverAddr, medium)
		var heard [][]byte
		listener.SetHandlers(nil, func(addr [6]byte, frame []byte) {
			heard = append(heard, frame)
		})

		Expect(core.Init()).To(Succeed())
		Expect(core.State()).To(Equal(bridge.Paired))
		Expect(core.Peer()).To(Equal(known))

		sender.Tick(core.Now())
		listener.Poll()
		Expect(heard).To(BeEmpty())
	})
})

var _ = Describe("Hop at the upper edge", func() {
	It("reflects to 12 and flips direction", func() {
		medium := hostsim.NewMedium()
		_, _, _, receiverCore, receiver, _ := newPair(medium)
		Expect(receiverCore.Init()).To(Succeed())

		peerRecord := peer.Peer{Addr: senderAddr, Key: [16]byte{}}
		Expect(receiverCore.CommitPairing(peerRecord)).To(Succeed())

		for receiver.Channel() != protocol.MaxChannel {
			receiver.HandleReceived(senderAddr, &protocol.Frame{Tag: protocol.TagHopRequest})
			receiver.HandleSent(senderAddr, true)
		}
		Expect(receiver.Channel()).To(Equal(protocol.MaxChannel))

		receiver.HandleReceived(senderAddr, &protocol.Frame{Tag: protocol.TagHopRequest})
		receiver.HandleSent(senderAddr, true)
		Expect(receiver.Channel()).To(Equal(protocol.MaxChannel - 1))

		// The flipped direction carries the next hop further down.
		receiver.HandleReceived(senderAddr, &protocol.Frame{Tag: protocol.TagHopRequest})
		receiver.HandleSent(senderAddr, true)
		Expect(receiver.Channel()).To(Equal(protocol.MaxChannel - 2))
	})
})

var _ = Describe("Payload limit", func() {
	It("rejects a 250-byte payload and accepts 249", func() {
		medium := hostsim.NewMedium()
		senderCore, sender, _, _, _, _ := newPair(medium)
		Expect(senderCore.Init()).To(Succeed())
		Expect(senderCore.CommitPairing(peer.Peer{Addr: receiverAddr})).To(Succeed())

		err := sender.SendData(make([]byte, protocol.MTU))
		Expect(err).To(MatchError(protocol.ErrPayloadTooLarge))

		err = sender.SendData(make([]byte, protocol.MaxDataPayload))
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Sender quality-triggered hop", func() {
	It("sends exactly one HOP_REQUEST and resets quality once it is accepted", func() {
		medium := hostsim.NewMedium()
		senderStore, err := fsstore.New(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		senderRadio := hostsim.NewRadio(senderAddr, medium)
		peerRadio := hostsim.NewRadio(receiverAddr, medium)

		senderCore := bridge.New(senderRadio, senderStore)
		sender := bridge.NewSender(senderCore, nil)
		senderCore.SetRole(sender)
		Expect(senderCore.Init()).To(Succeed())

		key := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
		Expect(senderCore.CommitPairing(peer.Peer{Addr: receiverAddr, Key: key})).To(Succeed())
		Expect(peerRadio.AddPeer(senderAddr, key)).To(Succeed())

		var received [][]byte
		peerRadio.SetHandlers(nil, func(addr [6]byte, frame []byte) {
			received = append(received, frame)
		})

		// 40 consecutive failed acks, mirroring a sustained bad link: the
		// estimator crosses below quality.Threshold on the 29th failure
		// (0.99^29 ≈ 0.747), at which point exactly one HOP_REQUEST is
		// emitted and, once accepted, quality resets to 1.0. The remaining
		// 11 failures decay it again to 0.99^11 ≈ 0.895, still above the
		// threshold, so no second request follows.
		for i := 0; i < 40; i++ {
			sender.HandleSent(receiverAddr, false)
		}

		Expect(sender.Quality()).To(BeNumerically("~", math.Pow(0.99, 11), 1e-9))

		peerRadio.Poll()
		Expect(received).To(HaveLen(1))
		frame, err := protocol.Decode(received[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Tag).To(Equal(protocol.TagHopRequest))
	})

	It("leaves quality unreset when the hop request is rejected", func() {
		medium := hostsim.NewMedium()
		senderStore, err := fsstore.New(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		senderRadio := hostsim.NewRadio(senderAddr, medium)
		senderCore := bridge.New(senderRadio, senderStore)
		sender := bridge.NewSender(senderCore, nil)
		senderCore.SetRole(sender)
		Expect(senderCore.Init()).To(Succeed())

		// No radio is registered at receiverAddr, so the substrate rejects
		// the unicast HOP_REQUEST outright once quality drops below
		// threshold, and the estimator is never reset.
		Expect(senderCore.CommitPairing(peer.Peer{Addr: receiverAddr})).To(Succeed())

		for i := 0; i < 40; i++ {
			sender.HandleSent(receiverAddr, false)
		}

		Expect(sender.Quality()).To(BeNumerically("<", quality.Threshold))
	})
})
