package main

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/Librechain/bmultisig/pkg/wallet/cosigner"
	"github.com/Librechain/bmultisig/pkg/wallet/hdwallet"
	"github.com/Librechain/bmultisig/pkg/wallet/mnemonic"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/spf13/cobra"
)

var (
	cosignerMnemonic string
	cosignerName     string
	cosignerAccount  uint32
	cosignerPurpose  uint32
	cosignerPath     string
	authPubKey       string
	joinSignature    string
	cosignerID       uint8

	cosignerGenSeedCmd = &cobra.Command{
		Use:   "genseed",
		Short: "generate a random mnemonic",
		Long: "this command lets you generate a new random mnemonic to " +
			"derive your account keys from",
		RunE: cosignerGenSeed,
	}
	cosignerGenKeyCmd = &cobra.Command{
		Use:   "genkey",
		Short: "generate a random key pair",
		Long: "this command lets you generate a random key pair to be used " +
			"either as auth key or as wallet pairing key",
		RunE: cosignerGenKey,
	}
	cosignerPayloadCmd = &cobra.Command{
		Use:   "payload",
		Short: "build the payload of a joining cosigner",
		Long: "this command builds your cosigner record and prints its hex " +
			"encoding, to be sent to the wallet creator for countersigning",
		RunE: cosignerPayload,
	}
	cosignerJoinCmd = &cobra.Command{
		Use:   "join",
		Short: "join a coordination wallet",
		Long: "this command proves the ownership of your account key and sends " +
			"the join request, along with the countersignature collected from " +
			"the wallet creator, to the coordinator",
		RunE: cosignerJoin,
	}
	cosignerRotateTokenCmd = &cobra.Command{
		Use:   "rotatetoken",
		Short: "request a fresh session token",
		Long: "this command lets a joined cosigner request a fresh session " +
			"token to the coordinator",
		RunE: cosignerRotateToken,
	}
	cosignerCmd = &cobra.Command{
		Use:   "cosigner",
		Short: "interact with the cosigner interface",
		Long: "this command lets you generate your cosigner keys, build and " +
			"send join requests and manage your session token",
	}
)

func init() {
	for _, cmd := range []*cobra.Command{cosignerPayloadCmd, cosignerJoinCmd} {
		cmd.Flags().StringVar(
			&cosignerMnemonic, "mnemonic", "",
			"space separated word list as account seed",
		)
		cmd.Flags().StringVar(&cosignerName, "name", "", "cosigner name")
		cmd.Flags().Uint32Var(&cosignerAccount, "account", 0, "account index")
		cmd.Flags().Uint32Var(&cosignerPurpose, "purpose", 44, "purpose index")
		cmd.Flags().StringVar(
			&cosignerPath, "path", "", "derivation path of the account key",
		)
		cmd.Flags().StringVar(
			&authPubKey, "auth-pubkey", "", "auth public key in hex",
		)
		cmd.MarkFlagRequired("mnemonic")
		cmd.MarkFlagRequired("name")
		cmd.MarkFlagRequired("auth-pubkey")
	}
	cosignerJoinCmd.Flags().StringVar(&walletName, "wallet", "", "wallet name")
	cosignerJoinCmd.Flags().StringVar(
		&joinSignature, "join-signature", "",
		"countersignature collected from the wallet creator, in hex",
	)
	cosignerJoinCmd.MarkFlagRequired("wallet")
	cosignerJoinCmd.MarkFlagRequired("join-signature")

	cosignerRotateTokenCmd.Flags().StringVar(&walletName, "wallet", "", "wallet name")
	cosignerRotateTokenCmd.Flags().Uint8Var(&cosignerID, "id", 0, "cosigner id")
	cosignerRotateTokenCmd.MarkFlagRequired("wallet")

	cosignerCmd.AddCommand(
		cosignerGenSeedCmd, cosignerGenKeyCmd, cosignerPayloadCmd,
		cosignerJoinCmd, cosignerRotateTokenCmd,
	)
}

func cosignerGenSeed(cmd *cobra.Command, args []string) error {
	words, err := mnemonic.NewMnemonic(mnemonic.NewMnemonicArgs{})
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(strings.Join(words, " "))
	return nil
}

func cosignerGenKey(cmd *cobra.Command, args []string) error {
	prvKey, err := btcec.NewPrivateKey()
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Printf(
		"private key: %s\npublic key: %s\n",
		hex.EncodeToString(prvKey.Serialize()),
		hex.EncodeToString(prvKey.PubKey().SerializeCompressed()),
	)
	return nil
}

func cosignerPayload(cmd *cobra.Command, args []string) error {
	record, _, err := buildCosignerRecord()
	if err != nil {
		printErr(err)
		return nil
	}

	net, err := getNetwork()
	if err != nil {
		printErr(err)
		return nil
	}
	buf, err := record.Serialize(net)
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(hex.EncodeToString(buf))
	return nil
}

func cosignerJoin(cmd *cobra.Command, args []string) error {
	record, hdw, err := buildCosignerRecord()
	if err != nil {
		printErr(err)
		return nil
	}

	joinSig, err := hex.DecodeString(joinSignature)
	if err != nil {
		printErr(fmt.Errorf("invalid join signature: %s", err))
		return nil
	}
	if err := record.SetJoinSignature(joinSig); err != nil {
		printErr(err)
		return nil
	}

	accountPrv, err := hdw.AccountKey(cosignerAccount)
	if err != nil {
		printErr(err)
		return nil
	}
	proofSig, err := record.SignProof(accountPrv)
	if err != nil {
		printErr(err)
		return nil
	}

	body := map[string]interface{}{
		"cosignerName":        record.Name(),
		"cosignerPurpose":     record.Purpose(),
		"cosignerFingerPrint": record.FingerPrint(),
		"cosignerData":        hex.EncodeToString([]byte(record.Path())),
		"accountKey":          record.Key().String(),
		"authPubKey":          hex.EncodeToString(record.AuthPubKey()),
		"joinSignature":       hex.EncodeToString(record.JoinSignature()),
		"proofSignature":      hex.EncodeToString(proofSig),
	}
	reply, err := postRequest(
		"/v1/wallets/"+url.PathEscape(walletName)+"/join", body,
	)
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(reply)
	return nil
}

func cosignerRotateToken(cmd *cobra.Command, args []string) error {
	reply, err := postRequest(fmt.Sprintf(
		"/v1/wallets/%s/cosigners/%d/token", url.PathEscape(walletName), cosignerID,
	), nil)
	if err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(reply)
	return nil
}

func buildCosignerRecord() (*cosigner.Cosigner, *hdwallet.Wallet, error) {
	words := strings.Fields(cosignerMnemonic)
	if err := mnemonic.Validate(words); err != nil {
		return nil, nil, err
	}

	net, err := getNetwork()
	if err != nil {
		return nil, nil, err
	}
	rootPath, err := getRootPath()
	if err != nil {
		return nil, nil, err
	}

	hdw, err := hdwallet.NewWallet(hdwallet.NewWalletArgs{
		Mnemonic: words,
		RootPath: rootPath,
		Network:  net,
	})
	if err != nil {
		return nil, nil, err
	}

	accountXpub, err := hdw.AccountXpub(cosignerAccount)
	if err != nil {
		return nil, nil, err
	}
	fingerPrint, err := hdw.MasterFingerPrint()
	if err != nil {
		return nil, nil, err
	}

	authKey, err := hex.DecodeString(authPubKey)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid auth public key: %s", err)
	}

	path := cosignerPath
	if path == "" {
		path = fmt.Sprintf("%s/%d'", rootPath, cosignerAccount)
	}

	record, err := cosigner.NewCosigner(cosigner.Options{
		Name:        cosignerName,
		Purpose:     cosignerPurpose,
		FingerPrint: fingerPrint,
		Path:        path,
		Key:         accountXpub,
		AuthPubKey:  authKey,
	})
	if err != nil {
		return nil, nil, err
	}
	return record, hdw, nil
}
