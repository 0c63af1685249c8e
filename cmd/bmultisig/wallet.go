package main

import (
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/spf13/cobra"
)

var (
	walletName         string
	walletM, walletN   uint8
	joinPubKey         string
	joinPrvKey         string
	cosignerHexPayload string

	walletCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "create a new coordination wallet",
		Long: "this command lets you create a new m-of-n coordination wallet " +
			"with the given pairing public key, against which every join " +
			"request will be verified",
		RunE: walletCreate,
	}
	walletInfoCmd = &cobra.Command{
		Use:   "info",
		Short: "get info about a wallet and its cosigners",
		Long: "this command returns info about a coordination wallet (threshold, " +
			"network, pairing key) and the public info of its cosigners",
		RunE: walletInfo,
	}
	walletListCmd = &cobra.Command{
		Use:   "list",
		Short: "list all coordination wallets",
		Long:  "this command returns info about all stored coordination wallets",
		RunE:  walletList,
	}
	walletCountersignCmd = &cobra.Command{
		Use:   "countersign",
		Short: "countersign a join request",
		Long: "this command lets the wallet creator authorize a joining " +
			"cosigner by countersigning its payload with the pairing private key",
		RunE: walletCountersign,
	}
	walletCmd = &cobra.Command{
		Use:   "wallet",
		Short: "interact with coordination wallets",
		Long: "this command lets you create a wallet, authorize cosigners to " +
			"join it, as long as retrieving info about its completion status",
	}
)

func init() {
	walletCreateCmd.Flags().StringVar(&walletName, "name", "", "wallet name")
	walletCreateCmd.Flags().Uint8Var(&walletM, "m", 0, "required signers")
	walletCreateCmd.Flags().Uint8Var(&walletN, "n", 0, "total signers")
	walletCreateCmd.Flags().StringVar(
		&joinPubKey, "join-pubkey", "",
		"pairing public key in hex, countersigning every join request",
	)
	walletCreateCmd.MarkFlagRequired("name")
	walletCreateCmd.MarkFlagRequired("m")
	walletCreateCmd.MarkFlagRequired("n")
	walletCreateCmd.MarkFlagRequired("join-pubkey")

	walletInfoCmd.Flags().StringVar(&walletName, "name", "", "wallet name")
	walletInfoCmd.MarkFlagRequired("name")

	walletCountersignCmd.Flags().StringVar(&walletName, "name", "", "wallet name")
	walletCountersignCmd.Flags().StringVar(
		&joinPrvKey, "join-prvkey", "", "pairing private key in hex",
	)
	walletCountersignCmd.Flags().StringVar(
		&cosignerHexPayload, "cosigner", "",
		"hex encoded payload of the joining cosigner, as printed by `cosigner payload`",
	)
	walletCountersignCmd.MarkFlagRequired("name")
	walletCountersignCmd.MarkFlagRequired("join-prvkey")
	walletCountersignCmd.MarkFlagRequired("cosigner")

	walletCmd.AddCommand(
		walletCreateCmd, walletInfoCmd, walletListCmd, walletCountersignCmd,
	)
}

func walletCreate(cmd *cobra.Command, args []string) error {
	reply, err := postRequest("/v1/wallets", map[string]interface{}{
		"name":       walletName,
		"m":          walletM,
		"n":          walletN,
		"joinPubKey": joinPubKey,
	})
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(reply)
	return nil
}

func walletInfo(cmd *cobra.Command, args []string) error {
	reply, err := getRequest("/v1/wallets/" + url.PathEscape(walletName))
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(reply)
	return nil
}

func walletList(cmd *cobra.Command, args []string) error {
	reply, err := getRequest("/v1/wallets")
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(reply)
	return nil
}

func walletCountersign(cmd *cobra.Command, args []string) error {
	prvKeyBytes, err := hex.DecodeString(joinPrvKey)
	if err != nil {
		printErr(fmt.Errorf("invalid pairing private key: %s", err))
		return nil
	}
	prvKey, _ := btcec.PrivKeyFromBytes(prvKeyBytes)

	record, err := decodeCosignerPayload(cosignerHexPayload)
	if err != nil {
		printErr(err)
		return nil
	}

	joinSig, err := record.SignJoin(prvKey, walletName)
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(hex.EncodeToString(joinSig))
	return nil
}

func decodeCosignerPayload(payload string) (*cosigner.Cosigner, error) {
	buf, err := hex.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid cosigner payload: %s", err)
	}
	net, err := getNetwork()
	if err != nil {
		return nil, err
	}
	return cosigner.Deserialize(buf, net)
}
